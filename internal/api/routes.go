package api

import (
	"github.com/go-chi/chi/v5"

	"github.com/signage-server/signage-server-pro/internal/auth"
)

// setupAPIRoutes sets up API v1 routes
func (s *RESTServer) setupAPIRoutes(r chi.Router) {
	// Health check
	r.Get("/health", s.HandleHealth)
	r.Get("/", s.HandleRoot)

	// Auth routes (public)
	r.Route("/auth", func(r chi.Router) {
		r.Post("/login", s.HandleLogin)
		r.Post("/logout", s.HandleLogout)
		r.Post("/register", s.HandleRegisterMaster)
	})

	// Device player channel (public, key in body)
	r.Route("/player", func(r chi.Router) {
		r.Post("/connect", s.HandlePlayerConnect)
		r.Post("/disconnect", s.HandlePlayerDisconnect)
		r.Post("/video", s.HandlePlayerVideo)
	})

	// Protected routes
	r.Group(func(r chi.Router) {
		r.Use(s.authMiddleware)

		r.Get("/me", s.HandleGetProfile)
		r.Put("/me", s.HandleUpdateProfile)
		r.Get("/dashboard", s.HandleDashboard)

		// Agencies (master tier)
		r.Route("/agencies", func(r chi.Router) {
			r.Use(s.requireRole(auth.RoleMaster))
			r.Get("/", s.HandleListAgencies)
			r.Post("/", s.HandleCreateAgency)
			r.Route("/{id}", func(r chi.Router) {
				r.Get("/", s.HandleGetAgency)
				r.Put("/", s.HandleUpdateAgency)
				r.Delete("/", s.HandleDeleteAgency)
			})
		})

		// Devices (master tier)
		r.Route("/devices", func(r chi.Router) {
			r.Use(s.requireRole(auth.RoleMaster))
			r.Get("/", s.HandleListDevices)
			r.Post("/", s.HandleCreateDevice)
			r.Route("/{id}", func(r chi.Router) {
				r.Get("/", s.HandleGetDevice)
				r.Put("/", s.HandleUpdateDevice)
				r.Delete("/", s.HandleDeleteDevice)
			})
		})

		// Agency clients (agency tier)
		r.Route("/agency-clients", func(r chi.Router) {
			r.Use(s.requireRole(auth.RoleAgency))
			r.Get("/", s.HandleListAgencyClients)
			r.Post("/", s.HandleCreateAgencyClient)
			r.Route("/{id}", func(r chi.Router) {
				r.Get("/", s.HandleGetAgencyClient)
				r.Put("/", s.HandleUpdateAgencyClient)
				r.Delete("/", s.HandleDeleteAgencyClient)
			})
		})

		// Agency's own devices
		r.Route("/agency-devices", func(r chi.Router) {
			r.Use(s.requireRole(auth.RoleAgency))
			r.Get("/", s.HandleListAgencyDevices)
			r.Put("/{id}/client", s.HandleAssignDeviceClient)
		})

		// Ads (agency tier)
		r.Route("/ads", func(r chi.Router) {
			r.Use(s.requireRole(auth.RoleAgency))
			r.Get("/", s.HandleListAds)
			r.Post("/", s.HandleUploadAd)
			r.Route("/{id}", func(r chi.Router) {
				r.Get("/", s.HandleGetAd)
				r.Put("/", s.HandleUpdateAd)
				r.Delete("/", s.HandleDeleteAd)
			})
		})

		// Assignments (agency tier)
		r.Route("/assignments", func(r chi.Router) {
			r.Use(s.requireRole(auth.RoleAgency))
			r.Get("/", s.HandleListAssignments)
			r.Post("/", s.HandleCreateAssignment)
			r.Get("/slots", s.HandleAvailabilityGrid)
			r.Get("/timeline", s.HandleDeviceTimeline)
			r.Get("/form-data", s.HandleAssignmentFormData)
			r.Route("/{id}", func(r chi.Router) {
				r.Get("/", s.HandleGetAssignment)
				r.Put("/", s.HandleUpdateAssignment)
				r.Delete("/", s.HandleDeleteAssignment)
			})
		})

		// Billing (agency tier)
		r.Route("/billing", func(r chi.Router) {
			r.Use(s.requireRole(auth.RoleAgency))
			r.Get("/completed", s.HandleCompletedItems)
			r.Post("/generate", s.HandleGenerateBill)
			r.Get("/bills", s.HandleListBills)
			r.Route("/bills/{id}", func(r chi.Router) {
				r.Get("/", s.HandleGetBill)
				r.Patch("/status", s.HandleUpdateBillStatus)
				r.Get("/pdf", s.HandleBillPDF)
			})
		})

		// Agency booking timeline views
		r.Route("/timeline", func(r chi.Router) {
			r.Use(s.requireRole(auth.RoleAgency))
			r.Get("/live", s.HandleTimelineLive)
			r.Get("/upcoming", s.HandleTimelineUpcoming)
			r.Get("/history", s.HandleTimelineHistory)
		})

		// Client self-service (agency-client tier)
		r.Route("/client", func(r chi.Router) {
			r.Use(s.requireRole(auth.RoleAgencyClient))
			r.Get("/assignments", s.HandleClientAssignments)
			r.Get("/ads/live", s.HandleClientLiveAds)
			r.Get("/ads/schedules", s.HandleClientSchedules)
			r.Get("/ads/history", s.HandleClientAdHistory)
			r.Get("/devices", s.HandleClientDevices)
			r.Get("/bills", s.HandleClientBills)
		})

		// Complaints, one subtree per direction
		r.Route("/complaints", func(r chi.Router) {
			r.Group(func(r chi.Router) {
				r.Use(s.requireRole(auth.RoleAgencyClient))
				r.Post("/agency", s.HandleSubmitClientComplaint)
				r.Get("/agency", s.HandleListOwnClientComplaints)
				r.Patch("/agency/{id}", s.HandleEditClientComplaint)
			})
			r.Group(func(r chi.Router) {
				r.Use(s.requireRole(auth.RoleAgency))
				r.Get("/clients", s.HandleListClientComplaints)
				r.Patch("/clients/{id}", s.HandleReplyClientComplaint)
				r.Post("/master", s.HandleSubmitAgencyComplaint)
				r.Get("/master", s.HandleListOwnAgencyComplaints)
				r.Patch("/master/{id}", s.HandleEditAgencyComplaint)
			})
			r.Group(func(r chi.Router) {
				r.Use(s.requireRole(auth.RoleMaster))
				r.Get("/agencies", s.HandleListAgencyComplaints)
				r.Patch("/agencies/{id}", s.HandleReplyAgencyComplaint)
			})
		})
	})
}
