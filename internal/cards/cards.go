// Package cards renders printable guest access-code cards and login QR codes.
package cards

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"net/url"
	"strings"
	"time"

	"github.com/jung-kurt/gofpdf"
	qrcode "github.com/skip2/go-qrcode"
)

// ErrNoCards is returned when Render is asked for an empty card set.
var ErrNoCards = errors.New("cards: no guests to render")

const (
	pageMargin  = 10.0
	cardWidth   = 92.0
	cardHeight  = 64.0
	cardGap     = 6.0
	cardsPerRow = 2
	rowsPerPage = 4
	qrSize      = 34.0
	qrPixels    = 256
)

// Event is the header printed on every card.
type Event struct {
	CoupleNames string
	EventDate   time.Time
	Venue       string
}

// Card is a single guest card.
type Card struct {
	Name        string
	AccessCode  string
	SeatNumber  *int
	TableNumber *int
}

// Renderer builds QR codes and card sheets pointing at the portal login page.
type Renderer struct {
	baseURL string
}

// NewRenderer returns a renderer whose links start with baseURL.
func NewRenderer(baseURL string) *Renderer {
	return &Renderer{baseURL: strings.TrimRight(strings.TrimSpace(baseURL), "/")}
}

// LoginURL returns the portal URL that pre-fills code on the login page.
func (r *Renderer) LoginURL(code string) string {
	return r.baseURL + "/?code=" + url.QueryEscape(code)
}

// QRCode returns a PNG QR code of size pixels encoding the login URL for code.
func (r *Renderer) QRCode(code string, size int) ([]byte, error) {
	if code == "" {
		return nil, errors.New("cards: access code is required")
	}
	if size <= 0 {
		size = qrPixels
	}
	png, err := qrcode.Encode(r.LoginURL(code), qrcode.Medium, size)
	if err != nil {
		return nil, fmt.Errorf("encode qr for %s: %w", code, err)
	}
	return png, nil
}

// Render writes an A4 PDF with eight cards per page in the given order.
func (r *Renderer) Render(w io.Writer, event Event, cards []Card) error {
	if len(cards) == 0 {
		return ErrNoCards
	}

	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetMargins(pageMargin, pageMargin, pageMargin)
	pdf.SetAutoPageBreak(false, 0)
	pdf.SetTitle("Access codes", true)
	tr := pdf.UnicodeTranslatorFromDescriptor("")

	perPage := cardsPerRow * rowsPerPage
	for i, card := range cards {
		if i%perPage == 0 {
			pdf.AddPage()
		}
		slot := i % perPage
		x := pageMargin + float64(slot%cardsPerRow)*(cardWidth+cardGap)
		y := pageMargin + float64(slot/cardsPerRow)*(cardHeight+cardGap)
		if err := r.drawCard(pdf, tr, x, y, event, card); err != nil {
			return err
		}
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return fmt.Errorf("render cards pdf: %w", err)
	}
	_, err := buf.WriteTo(w)
	return err
}

func (r *Renderer) drawCard(pdf *gofpdf.Fpdf, tr func(string) string, x, y float64, event Event, card Card) error {
	pdf.SetDrawColor(200, 200, 200)
	pdf.SetFillColor(250, 247, 240)
	pdf.Rect(x, y, cardWidth, cardHeight, "FD")

	textWidth := cardWidth - qrSize - 8

	pdf.SetXY(x+4, y+4)
	pdf.SetFont("Helvetica", "B", 12)
	pdf.CellFormat(textWidth, 6, tr(event.CoupleNames), "", 2, "L", false, 0, "")

	pdf.SetFont("Helvetica", "", 8)
	if !event.EventDate.IsZero() {
		pdf.CellFormat(textWidth, 4, event.EventDate.Format("Monday, 2 January 2006"), "", 2, "L", false, 0, "")
	}
	if event.Venue != "" {
		pdf.CellFormat(textWidth, 4, tr(event.Venue), "", 2, "L", false, 0, "")
	}

	pdf.SetXY(x+4, y+24)
	pdf.SetFont("Helvetica", "", 11)
	pdf.CellFormat(textWidth, 6, tr(card.Name), "", 2, "L", false, 0, "")

	pdf.SetFont("Courier", "B", 18)
	pdf.CellFormat(textWidth, 10, card.AccessCode, "", 2, "L", false, 0, "")

	pdf.SetFont("Helvetica", "", 9)
	pdf.CellFormat(textWidth, 5, seatLine(card), "", 2, "L", false, 0, "")

	png, err := r.QRCode(card.AccessCode, qrPixels)
	if err != nil {
		return err
	}
	name := "qr-" + card.AccessCode
	opts := gofpdf.ImageOptions{ImageType: "png"}
	pdf.RegisterImageOptionsReader(name, opts, bytes.NewReader(png))
	pdf.ImageOptions(name, x+cardWidth-qrSize-4, y+(cardHeight-qrSize)/2, qrSize, qrSize, false, opts, 0, "")

	pdf.SetXY(x+4, y+cardHeight-8)
	pdf.SetFont("Helvetica", "I", 7)
	pdf.CellFormat(cardWidth-8, 4, "Scan or enter your code at "+r.baseURL, "", 0, "L", false, 0, "")

	return pdf.Error()
}

func seatLine(card Card) string {
	switch {
	case card.SeatNumber != nil && card.TableNumber != nil:
		return fmt.Sprintf("Table %d, seat %d", *card.TableNumber, *card.SeatNumber)
	case card.SeatNumber != nil:
		return fmt.Sprintf("Seat %d", *card.SeatNumber)
	}
	return "Seat to be assigned"
}
