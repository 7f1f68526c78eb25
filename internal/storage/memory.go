package storage

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/signage-server/signage-server-pro/internal/models"
)

// MemoryStore is an in-memory Store used by tests. It enforces the same
// invariants as the Postgres schema: unique login emails, unique device
// keys, non-overlapping assignment windows per device and an atomic
// invoice sequence.
type MemoryStore struct {
	mu sync.Mutex

	masters     map[uuid.UUID]*models.Master
	agencies    map[uuid.UUID]*models.Agency
	clients     map[uuid.UUID]*models.AgencyClient
	devices     map[uuid.UUID]*models.Device
	ads         map[uuid.UUID]*models.Ad
	assignments map[uuid.UUID]*models.Assignment
	bills       map[uuid.UUID]*models.Bill
	billItems   map[uuid.UUID]*models.BillItem
	clientComps map[uuid.UUID]*models.ClientComplaint
	agencyComps map[uuid.UUID]*models.AgencyComplaint

	invoiceSeq int64
}

// NewMemoryStore creates an empty in-memory store
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		masters:     make(map[uuid.UUID]*models.Master),
		agencies:    make(map[uuid.UUID]*models.Agency),
		clients:     make(map[uuid.UUID]*models.AgencyClient),
		devices:     make(map[uuid.UUID]*models.Device),
		ads:         make(map[uuid.UUID]*models.Ad),
		assignments: make(map[uuid.UUID]*models.Assignment),
		bills:       make(map[uuid.UUID]*models.Bill),
		billItems:   make(map[uuid.UUID]*models.BillItem),
		clientComps: make(map[uuid.UUID]*models.ClientComplaint),
		agencyComps: make(map[uuid.UUID]*models.AgencyComplaint),
	}
}

// BeginTx returns the store itself: operations apply immediately. Good
// enough for tests, which never exercise rollback-after-partial-write.
func (s *MemoryStore) BeginTx(ctx context.Context) (Store, error) { return s, nil }

// Commit is a no-op
func (s *MemoryStore) Commit() error { return nil }

// Rollback is a no-op
func (s *MemoryStore) Rollback() error { return nil }

// Close is a no-op
func (s *MemoryStore) Close() error { return nil }

// LockDevice is a no-op: the store mutex already serializes writers.
func (s *MemoryStore) LockDevice(ctx context.Context, deviceID uuid.UUID) error { return nil }

func stamp(id *uuid.UUID, created, updated *time.Time) {
	if *id == uuid.Nil {
		*id = uuid.New()
	}
	now := time.Now()
	if created != nil && created.IsZero() {
		*created = now
	}
	if updated != nil {
		*updated = now
	}
}

// ========== Masters ==========

func (s *MemoryStore) CreateMaster(ctx context.Context, m *models.Master) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, other := range s.masters {
		if other.Email == m.Email {
			return ErrDuplicateKey
		}
	}
	stamp(&m.ID, &m.CreatedAt, &m.UpdatedAt)
	cp := *m
	s.masters[m.ID] = &cp
	return nil
}

func (s *MemoryStore) GetMaster(ctx context.Context, id uuid.UUID) (*models.Master, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	m, ok := s.masters[id]
	if !ok {
		return nil, ErrNotFound
	}
	cp := *m
	return &cp, nil
}

func (s *MemoryStore) GetMasterByEmail(ctx context.Context, email string) (*models.Master, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, m := range s.masters {
		if m.Email == email {
			cp := *m
			return &cp, nil
		}
	}
	return nil, ErrNotFound
}

func (s *MemoryStore) UpdateMaster(ctx context.Context, m *models.Master) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.masters[m.ID]; !ok {
		return ErrNotFound
	}
	m.UpdatedAt = time.Now()
	cp := *m
	s.masters[m.ID] = &cp
	return nil
}

// ========== Agencies ==========

func (s *MemoryStore) CreateAgency(ctx context.Context, a *models.Agency) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, other := range s.agencies {
		if other.Email == a.Email {
			return ErrDuplicateKey
		}
	}
	stamp(&a.ID, &a.CreatedAt, &a.UpdatedAt)
	cp := *a
	s.agencies[a.ID] = &cp
	return nil
}

func (s *MemoryStore) GetAgency(ctx context.Context, id uuid.UUID) (*models.Agency, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	a, ok := s.agencies[id]
	if !ok {
		return nil, ErrNotFound
	}
	cp := *a
	return &cp, nil
}

func (s *MemoryStore) GetAgencyByEmail(ctx context.Context, email string) (*models.Agency, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, a := range s.agencies {
		if a.Email == email {
			cp := *a
			return &cp, nil
		}
	}
	return nil, ErrNotFound
}

func (s *MemoryStore) UpdateAgency(ctx context.Context, a *models.Agency) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.agencies[a.ID]; !ok {
		return ErrNotFound
	}
	a.UpdatedAt = time.Now()
	cp := *a
	s.agencies[a.ID] = &cp
	return nil
}

func (s *MemoryStore) DeleteAgency(ctx context.Context, id uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.agencies[id]; !ok {
		return ErrNotFound
	}
	delete(s.agencies, id)
	return nil
}

func (s *MemoryStore) ListAgencies(ctx context.Context, masterID uuid.UUID) ([]*models.Agency, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []*models.Agency
	for _, a := range s.agencies {
		if a.MasterID == masterID {
			cp := *a
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

// ========== Agency clients ==========

func (s *MemoryStore) CreateAgencyClient(ctx context.Context, c *models.AgencyClient) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, other := range s.clients {
		if other.BusinessEmail == c.BusinessEmail {
			return ErrDuplicateKey
		}
	}
	stamp(&c.ID, &c.CreatedAt, &c.UpdatedAt)
	cp := *c
	s.clients[c.ID] = &cp
	return nil
}

func (s *MemoryStore) GetAgencyClient(ctx context.Context, id uuid.UUID) (*models.AgencyClient, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	c, ok := s.clients[id]
	if !ok {
		return nil, ErrNotFound
	}
	cp := *c
	return &cp, nil
}

func (s *MemoryStore) GetAgencyClientByEmail(ctx context.Context, email string) (*models.AgencyClient, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, c := range s.clients {
		if c.BusinessEmail == email {
			cp := *c
			return &cp, nil
		}
	}
	return nil, ErrNotFound
}

func (s *MemoryStore) UpdateAgencyClient(ctx context.Context, c *models.AgencyClient) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.clients[c.ID]; !ok {
		return ErrNotFound
	}
	c.UpdatedAt = time.Now()
	cp := *c
	s.clients[c.ID] = &cp
	return nil
}

func (s *MemoryStore) DeleteAgencyClient(ctx context.Context, id uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.clients[id]; !ok {
		return ErrNotFound
	}
	delete(s.clients, id)
	return nil
}

func (s *MemoryStore) ListAgencyClients(ctx context.Context, agencyID uuid.UUID) ([]*models.AgencyClient, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []*models.AgencyClient
	for _, c := range s.clients {
		if c.AgencyID == agencyID {
			cp := *c
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].BusinessName < out[j].BusinessName })
	return out, nil
}

// ========== Devices ==========

func (s *MemoryStore) CreateDevice(ctx context.Context, d *models.Device) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, other := range s.devices {
		if other.UUID == d.UUID || other.PublicKey == d.PublicKey || other.SecretKey == d.SecretKey {
			return ErrDuplicateKey
		}
	}
	if d.Status == "" {
		d.Status = models.DeviceInactive
	}
	stamp(&d.ID, &d.CreatedAt, &d.UpdatedAt)
	cp := *d
	s.devices[d.ID] = &cp
	return nil
}

func (s *MemoryStore) GetDevice(ctx context.Context, id uuid.UUID) (*models.Device, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	d, ok := s.devices[id]
	if !ok {
		return nil, ErrNotFound
	}
	cp := *d
	return &cp, nil
}

func (s *MemoryStore) GetDeviceBySecretKey(ctx context.Context, key string) (*models.Device, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, d := range s.devices {
		if d.SecretKey == key {
			cp := *d
			return &cp, nil
		}
	}
	return nil, ErrNotFound
}

func (s *MemoryStore) UpdateDevice(ctx context.Context, d *models.Device) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.devices[d.ID]; !ok {
		return ErrNotFound
	}
	d.UpdatedAt = time.Now()
	cp := *d
	s.devices[d.ID] = &cp
	return nil
}

func (s *MemoryStore) UpdateDeviceStatus(ctx context.Context, id uuid.UUID, status models.DeviceStatus) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	d, ok := s.devices[id]
	if !ok {
		return ErrNotFound
	}
	d.Status = status
	d.UpdatedAt = time.Now()
	return nil
}

func (s *MemoryStore) DeleteDevice(ctx context.Context, id uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.devices[id]; !ok {
		return ErrNotFound
	}
	delete(s.devices, id)
	return nil
}

func (s *MemoryStore) ListDevices(ctx context.Context, filters DeviceFilters) ([]*models.Device, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []*models.Device
	for _, d := range s.devices {
		if filters.MasterID != nil && d.MasterID != *filters.MasterID {
			continue
		}
		if filters.AgencyID != nil && d.AgencyID != *filters.AgencyID {
			continue
		}
		if filters.ClientID != nil && (d.ClientID == nil || *d.ClientID != *filters.ClientID) {
			continue
		}
		cp := *d
		out = append(out, &cp)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

// ========== Ads ==========

func (s *MemoryStore) CreateAd(ctx context.Context, ad *models.Ad) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	stamp(&ad.ID, &ad.CreatedAt, &ad.UpdatedAt)
	cp := *ad
	s.ads[ad.ID] = &cp
	return nil
}

func (s *MemoryStore) GetAd(ctx context.Context, id uuid.UUID) (*models.Ad, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	ad, ok := s.ads[id]
	if !ok {
		return nil, ErrNotFound
	}
	cp := *ad
	return &cp, nil
}

func (s *MemoryStore) UpdateAd(ctx context.Context, ad *models.Ad) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.ads[ad.ID]; !ok {
		return ErrNotFound
	}
	ad.UpdatedAt = time.Now()
	cp := *ad
	s.ads[ad.ID] = &cp
	return nil
}

func (s *MemoryStore) DeleteAd(ctx context.Context, id uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.ads[id]; !ok {
		return ErrNotFound
	}
	delete(s.ads, id)
	return nil
}

func (s *MemoryStore) ListAds(ctx context.Context, agencyID uuid.UUID) ([]*models.Ad, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []*models.Ad
	for _, ad := range s.ads {
		if ad.AgencyID == agencyID {
			cp := *ad
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

// ========== Assignments ==========

func (s *MemoryStore) CreateAssignment(ctx context.Context, a *models.Assignment) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, other := range s.assignments {
		if other.DeviceID == a.DeviceID && other.Overlaps(a.StartTime, a.EndTime) {
			return ErrConflict
		}
	}
	stamp(&a.ID, &a.CreatedAt, &a.UpdatedAt)
	cp := *a
	cp.Client, cp.Device, cp.Ad = nil, nil, nil
	s.assignments[a.ID] = &cp
	return nil
}

func (s *MemoryStore) GetAssignment(ctx context.Context, id uuid.UUID) (*models.Assignment, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	a, ok := s.assignments[id]
	if !ok {
		return nil, ErrNotFound
	}
	return s.withRelations(a), nil
}

func (s *MemoryStore) UpdateAssignment(ctx context.Context, a *models.Assignment) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	existing, ok := s.assignments[a.ID]
	if !ok {
		return ErrNotFound
	}
	for _, other := range s.assignments {
		if other.ID != a.ID && other.DeviceID == existing.DeviceID && other.Overlaps(a.StartTime, a.EndTime) {
			return ErrConflict
		}
	}
	existing.StartTime = a.StartTime
	existing.EndTime = a.EndTime
	existing.AdID = a.AdID
	existing.UpdatedAt = time.Now()
	return nil
}

func (s *MemoryStore) DeleteAssignment(ctx context.Context, id uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.assignments[id]; !ok {
		return ErrNotFound
	}
	delete(s.assignments, id)
	return nil
}

func (s *MemoryStore) CountOverlapping(ctx context.Context, deviceID uuid.UUID, start, end time.Time, exclude *uuid.UUID) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var count int64
	for _, a := range s.assignments {
		if exclude != nil && a.ID == *exclude {
			continue
		}
		if a.DeviceID == deviceID && a.Overlaps(start, end) {
			count++
		}
	}
	return count, nil
}

func (s *MemoryStore) GetLiveAssignment(ctx context.Context, deviceID uuid.UUID, now time.Time) (*models.Assignment, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var live *models.Assignment
	for _, a := range s.assignments {
		if a.DeviceID != deviceID {
			continue
		}
		if a.StartTime.After(now) || !a.EndTime.After(now) {
			continue
		}
		if live == nil || a.StartTime.Before(live.StartTime) {
			live = a
		}
	}
	if live == nil {
		return nil, ErrNotFound
	}
	return s.withRelations(live), nil
}

func (s *MemoryStore) ListAssignments(ctx context.Context, filters AssignmentFilters) ([]*models.Assignment, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []*models.Assignment
	for _, a := range s.assignments {
		if filters.AgencyID != nil && !s.ownedByAgency(a, *filters.AgencyID) {
			continue
		}
		if filters.ClientID != nil && a.ClientID != *filters.ClientID {
			continue
		}
		if filters.DeviceID != nil && a.DeviceID != *filters.DeviceID {
			continue
		}
		if r := filters.Intersecting; r != nil {
			if a.StartTime.After(r.To) || a.EndTime.Before(r.From) {
				continue
			}
		}
		if r := filters.Contained; r != nil {
			if a.StartTime.Before(r.From) || a.EndTime.After(r.To) {
				continue
			}
		}
		out = append(out, s.withRelations(a))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].StartTime.After(out[j].StartTime) })
	return out, nil
}

// ownedByAgency mirrors the read-visibility rule: any one ownership
// edge (device, client or ad) suffices.
func (s *MemoryStore) ownedByAgency(a *models.Assignment, agencyID uuid.UUID) bool {
	if d, ok := s.devices[a.DeviceID]; ok && d.AgencyID == agencyID {
		return true
	}
	if c, ok := s.clients[a.ClientID]; ok && c.AgencyID == agencyID {
		return true
	}
	if ad, ok := s.ads[a.AdID]; ok && ad.AgencyID == agencyID {
		return true
	}
	return false
}

func (s *MemoryStore) withRelations(a *models.Assignment) *models.Assignment {
	cp := *a
	if c, ok := s.clients[a.ClientID]; ok {
		ccp := *c
		cp.Client = &ccp
	}
	if d, ok := s.devices[a.DeviceID]; ok {
		dcp := *d
		cp.Device = &dcp
	}
	if ad, ok := s.ads[a.AdID]; ok {
		adcp := *ad
		cp.Ad = &adcp
	}
	return &cp
}

// ========== Bills ==========

func (s *MemoryStore) NextInvoiceNumber(ctx context.Context) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.invoiceSeq++
	return s.invoiceSeq, nil
}

func (s *MemoryStore) CreateBill(ctx context.Context, bill *models.Bill) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if bill.Status == "" {
		bill.Status = models.BillPending
	}
	stamp(&bill.ID, &bill.CreatedAt, nil)
	cp := *bill
	cp.Items, cp.Agency, cp.Client = nil, nil, nil
	s.bills[bill.ID] = &cp
	return nil
}

func (s *MemoryStore) CreateBillItem(ctx context.Context, item *models.BillItem) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if item.ID == uuid.Nil {
		item.ID = uuid.New()
	}
	cp := *item
	cp.Ad, cp.Device = nil, nil
	s.billItems[item.ID] = &cp
	return nil
}

func (s *MemoryStore) GetBill(ctx context.Context, id uuid.UUID) (*models.Bill, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	bill, ok := s.bills[id]
	if !ok {
		return nil, ErrNotFound
	}
	return s.billWithRelations(bill), nil
}

func (s *MemoryStore) UpdateBillStatus(ctx context.Context, id uuid.UUID, status models.BillStatus) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	bill, ok := s.bills[id]
	if !ok {
		return ErrNotFound
	}
	bill.Status = status
	return nil
}

func (s *MemoryStore) ListBills(ctx context.Context, filters BillFilters) ([]*models.Bill, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []*models.Bill
	for _, bill := range s.bills {
		if filters.AgencyID != nil && bill.AgencyID != *filters.AgencyID {
			continue
		}
		if filters.ClientID != nil && bill.ClientID != *filters.ClientID {
			continue
		}
		if filters.From != nil && bill.FromDate.Before(*filters.From) {
			continue
		}
		if filters.To != nil && bill.ToDate.After(*filters.To) {
			continue
		}
		out = append(out, s.billWithRelations(bill))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].FromDate.After(out[j].FromDate) })
	return out, nil
}

func (s *MemoryStore) billWithRelations(bill *models.Bill) *models.Bill {
	cp := *bill
	if a, ok := s.agencies[bill.AgencyID]; ok {
		acp := *a
		cp.Agency = &acp
	}
	if c, ok := s.clients[bill.ClientID]; ok {
		ccp := *c
		cp.Client = &ccp
	}
	var items []*models.BillItem
	for _, item := range s.billItems {
		if item.BillID != bill.ID {
			continue
		}
		icp := *item
		if ad, ok := s.ads[item.AdID]; ok {
			adcp := *ad
			icp.Ad = &adcp
		}
		if d, ok := s.devices[item.DeviceID]; ok {
			dcp := *d
			icp.Device = &dcp
		}
		items = append(items, &icp)
	}
	sort.Slice(items, func(i, j int) bool { return items[i].ID.String() < items[j].ID.String() })
	cp.Items = items
	return &cp
}

// ========== Complaints ==========

func (s *MemoryStore) CreateClientComplaint(ctx context.Context, c *models.ClientComplaint) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if c.Status == "" {
		c.Status = models.ComplaintPending
	}
	stamp(&c.ID, &c.CreatedAt, &c.UpdatedAt)
	cp := *c
	cp.Client = nil
	s.clientComps[c.ID] = &cp
	return nil
}

func (s *MemoryStore) GetClientComplaint(ctx context.Context, id uuid.UUID) (*models.ClientComplaint, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	c, ok := s.clientComps[id]
	if !ok {
		return nil, ErrNotFound
	}
	cp := *c
	return &cp, nil
}

func (s *MemoryStore) UpdateClientComplaint(ctx context.Context, c *models.ClientComplaint) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.clientComps[c.ID]; !ok {
		return ErrNotFound
	}
	c.UpdatedAt = time.Now()
	cp := *c
	cp.Client = nil
	s.clientComps[c.ID] = &cp
	return nil
}

func (s *MemoryStore) ListClientComplaints(ctx context.Context, filters ComplaintFilters) ([]*models.ClientComplaint, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []*models.ClientComplaint
	for _, c := range s.clientComps {
		if filters.SubmitterID != nil && c.ClientID != *filters.SubmitterID {
			continue
		}
		if filters.ReceiverID != nil && c.AgencyID != *filters.ReceiverID {
			continue
		}
		cp := *c
		if cl, ok := s.clients[c.ClientID]; ok {
			clcp := *cl
			cp.Client = &clcp
		}
		out = append(out, &cp)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (s *MemoryStore) CreateAgencyComplaint(ctx context.Context, c *models.AgencyComplaint) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if c.Status == "" {
		c.Status = models.ComplaintPending
	}
	stamp(&c.ID, &c.CreatedAt, &c.UpdatedAt)
	cp := *c
	cp.Agency = nil
	s.agencyComps[c.ID] = &cp
	return nil
}

func (s *MemoryStore) GetAgencyComplaint(ctx context.Context, id uuid.UUID) (*models.AgencyComplaint, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	c, ok := s.agencyComps[id]
	if !ok {
		return nil, ErrNotFound
	}
	cp := *c
	return &cp, nil
}

func (s *MemoryStore) UpdateAgencyComplaint(ctx context.Context, c *models.AgencyComplaint) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.agencyComps[c.ID]; !ok {
		return ErrNotFound
	}
	c.UpdatedAt = time.Now()
	cp := *c
	cp.Agency = nil
	s.agencyComps[c.ID] = &cp
	return nil
}

func (s *MemoryStore) ListAgencyComplaints(ctx context.Context, filters ComplaintFilters) ([]*models.AgencyComplaint, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []*models.AgencyComplaint
	for _, c := range s.agencyComps {
		if filters.SubmitterID != nil && c.AgencyID != *filters.SubmitterID {
			continue
		}
		if filters.ReceiverID != nil && c.MasterID != *filters.ReceiverID {
			continue
		}
		cp := *c
		if a, ok := s.agencies[c.AgencyID]; ok {
			acp := *a
			cp.Agency = &acp
		}
		out = append(out, &cp)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}
