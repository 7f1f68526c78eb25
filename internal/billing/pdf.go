package billing

import (
	"fmt"
	"io"
	"time"

	"github.com/jung-kurt/gofpdf"

	"github.com/signage-server/signage-server-pro/internal/models"
)

// Table column widths in points
const (
	colAd     = 180.0
	colDevice = 150.0
	colPlays  = 80.0
	colAmount = 100.0
	rowHeight = 22.0
)

// WriteInvoicePDF renders a bill as an A4 invoice: header with the
// invoice number, agency and client blocks side by side, the billing
// period, a striped line-item table with page breaks, tax summary and
// the grand total spelled out in words.
func WriteInvoicePDF(bill *models.Bill, w io.Writer) error {
	pdf := gofpdf.New("P", "pt", "A4", "")
	pdf.SetMargins(50, 50, 50)
	pdf.SetAutoPageBreak(false, 50)
	pdf.AddPage()

	pageW, pageH := pdf.GetPageSize()
	left := 50.0
	tableW := colAd + colDevice + colPlays + colAmount

	// Title and invoice number
	pdf.SetFont("Helvetica", "BU", 26)
	pdf.SetTextColor(26, 32, 44)
	pdf.CellFormat(pageW-100, 30, "Bill Summary", "", 1, "C", false, 0, "")
	pdf.SetFont("Helvetica", "", 14)
	pdf.SetTextColor(74, 85, 104)
	pdf.CellFormat(pageW-100, 20, fmt.Sprintf("Invoice #: %s", bill.InvoiceNumber), "", 1, "C", false, 0, "")
	pdf.Ln(15)

	// Agency and client blocks side by side
	rightX := pageW/2 + 20
	y := pdf.GetY()

	pdf.SetFont("Helvetica", "B", 12)
	pdf.SetTextColor(45, 55, 72)
	pdf.Text(left, y+12, "Agency Details")
	pdf.Text(rightX, y+12, "Client Details")
	y += 30

	pdf.SetFont("Helvetica", "", 10)
	writePair := func(leftText, rightText string) {
		pdf.Text(left, y, leftText)
		pdf.Text(rightX, y, rightText)
		y += 15
	}

	agencyName, agencyAddr, agencyEmail, agencyPhone := "N/A", "N/A", "N/A", "N/A"
	if bill.Agency != nil {
		agencyName = bill.Agency.Name
		agencyAddr = bill.Agency.Address()
		agencyEmail = bill.Agency.Email
		agencyPhone = bill.Agency.Phone
	}
	clientName, clientAddr, clientEmail, clientPhone := "N/A", "N/A", "N/A", "N/A"
	if bill.Client != nil {
		clientName = bill.Client.BusinessName
		clientAddr = bill.Client.Address()
		clientEmail = bill.Client.BusinessEmail
		clientPhone = bill.Client.WhatsappNumber
	}

	writePair("Name: "+agencyName, "Name: "+clientName)
	writePair("Address: "+agencyAddr, "Address: "+clientAddr)
	writePair("Email: "+agencyEmail, "Email: "+clientEmail)
	writePair("Phone: "+agencyPhone, "Phone: "+clientPhone)
	y += 15

	// Billing period
	pdf.SetFont("Helvetica", "", 11)
	pdf.SetTextColor(45, 55, 72)
	pdf.Text(left, y, "Generated On: "+time.Now().Format("2006-01-02"))
	y += 16
	pdf.Text(left, y, "From: "+bill.FromDate.Format("2006-01-02"))
	y += 16
	pdf.Text(left, y, "To: "+bill.ToDate.Format("2006-01-02"))
	y += 16

	pdf.SetDrawColor(203, 213, 224)
	pdf.SetLineWidth(1)
	pdf.Line(left, y, pageW-50, y)
	y += 10

	// Table header
	pdf.SetFillColor(226, 232, 240)
	pdf.Rect(left, y, tableW, 25, "F")
	pdf.SetFont("Helvetica", "B", 11)
	pdf.SetTextColor(26, 32, 44)
	headerY := y + 16
	pdf.Text(left+5, headerY, "Ad")
	pdf.Text(left+colAd+5, headerY, "Device")
	textRight(pdf, left+colAd+colDevice, colPlays-5, headerY, "Plays")
	textRight(pdf, left+colAd+colDevice+colPlays, colAmount-5, headerY, "Amount (Rs.)")

	pdf.SetDrawColor(160, 174, 192)
	pdf.Line(left, y+25, left+tableW, y+25)
	y += 27

	// Rows, striped, with page breaks
	pdf.SetFont("Helvetica", "", 10)
	for i, item := range bill.Items {
		if y > pageH-50-rowHeight {
			pdf.AddPage()
			y = 50
		}

		if i%2 == 0 {
			pdf.SetFillColor(247, 250, 252)
			pdf.Rect(left, y, tableW, rowHeight, "F")
		}

		adTitle, deviceName := "N/A", "N/A"
		if item.Ad != nil {
			adTitle = item.Ad.Title
		}
		if item.Device != nil {
			deviceName = item.Device.Name
		}

		pdf.SetTextColor(26, 32, 44)
		textY := y + 14
		pdf.Text(left+5, textY, adTitle)
		pdf.Text(left+colAd+5, textY, deviceName)
		textRight(pdf, left+colAd+colDevice, colPlays-5, textY, fmt.Sprintf("%d", item.PlayCount))
		textRight(pdf, left+colAd+colDevice+colPlays, colAmount-5, textY, fmt.Sprintf("%.2f", item.TotalPrice))

		pdf.SetDrawColor(226, 232, 240)
		pdf.Line(left, y+rowHeight, left+tableW, y+rowHeight)
		y += rowHeight
	}

	// Totals
	const gstRate = 0.18
	gst := bill.TotalPrice * gstRate
	grandTotal := bill.TotalPrice + gst

	y += 5
	pdf.SetDrawColor(203, 213, 224)
	pdf.Line(left, y, left+tableW, y)
	y += 20

	pdf.SetFont("Helvetica", "", 12)
	pdf.SetTextColor(45, 55, 72)
	textRight(pdf, left, tableW, y, fmt.Sprintf("Subtotal: Rs.%.2f", bill.TotalPrice))
	y += 20
	textRight(pdf, left, tableW, y, fmt.Sprintf("GST (18%%): Rs.%.2f", gst))
	y += 25

	pdf.SetFont("Helvetica", "B", 14)
	pdf.SetTextColor(26, 32, 44)
	textRight(pdf, left, tableW, y, fmt.Sprintf("Total (incl. GST): Rs.%.2f", grandTotal))
	y += 30

	pdf.SetFont("Helvetica", "", 10)
	pdf.SetTextColor(74, 85, 104)
	words := AmountInWords(int(grandTotal + 0.5))
	pdf.Text(left, y, fmt.Sprintf("Amount in words: %s Rupees Only", words))
	y += 40

	// Terms
	pdf.SetFont("Helvetica", "BU", 11)
	pdf.SetTextColor(45, 55, 72)
	pdf.Text(left, y, "Terms & Notes:")
	y += 15
	pdf.SetFont("Helvetica", "", 9)
	pdf.SetTextColor(74, 85, 104)
	pdf.Text(left, y, "1. Payment is due within 15 days of bill generation.")
	y += 13
	pdf.Text(left, y, "2. All playback data is verified via device logs.")
	y += 13
	pdf.Text(left, y, "3. Disputes must be reported within 5 business days.")

	return pdf.Output(w)
}

// textRight draws text right-aligned against x+width
func textRight(pdf *gofpdf.Fpdf, x, width float64, y float64, s string) {
	w := pdf.GetStringWidth(s)
	pdf.Text(x+width-w, y, s)
}
