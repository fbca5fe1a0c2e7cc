package quote

import (
	"bytes"
	"context"
	"embed"
	"fmt"
	"html/template"
	"strings"
	"time"

	"github.com/chromedp/cdproto/page"
	"github.com/chromedp/chromedp"

	"travel-backoffice/internal/models"
)

//go:embed templates/quote.html
var templateFS embed.FS

var quoteTemplate = template.Must(template.New("quote.html").Funcs(template.FuncMap{
	"money": func(v float64) string { return fmt.Sprintf("%.2f", v) },
	"lines": func(s string) []string {
		var out []string
		for _, l := range strings.Split(s, "\n") {
			if l = strings.TrimSpace(l); l != "" {
				out = append(out, l)
			}
		}
		return out
	},
}).ParseFS(templateFS, "templates/quote.html"))

type quoteData struct {
	Agency    string
	Generated string
	Itinerary *models.Itinerary
	Days      []models.ItineraryDay
	Hotels    []models.ItineraryHotel
	Vehicles  []models.ItineraryVehicle
}

// RenderHTML renders the customer quote for an itinerary.
func RenderHTML(agency string, it *models.Itinerary) (string, error) {
	days, err := it.DayList()
	if err != nil {
		return "", fmt.Errorf("itinerary days: %w", err)
	}
	hotels, err := it.HotelList()
	if err != nil {
		return "", fmt.Errorf("itinerary hotels: %w", err)
	}
	vehicles, err := it.VehicleList()
	if err != nil {
		return "", fmt.Errorf("itinerary vehicles: %w", err)
	}

	var buf bytes.Buffer
	err = quoteTemplate.Execute(&buf, quoteData{
		Agency:    agency,
		Generated: time.Now().Format("02-Jan-2006"),
		Itinerary: it,
		Days:      days,
		Hotels:    hotels,
		Vehicles:  vehicles,
	})
	if err != nil {
		return "", fmt.Errorf("render quote: %w", err)
	}
	return buf.String(), nil
}

// PDFRenderer turns an HTML document into a PDF.
type PDFRenderer interface {
	RenderPDF(ctx context.Context, html string) ([]byte, error)
}

// ChromeRenderer prints through a headless Chrome started per call.
type ChromeRenderer struct {
	timeout time.Duration
	opts    []chromedp.ExecAllocatorOption
}

func NewChromeRenderer(timeout time.Duration) *ChromeRenderer {
	opts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.NoSandbox,
		chromedp.DisableGPU,
	)
	return &ChromeRenderer{timeout: timeout, opts: opts}
}

func (r *ChromeRenderer) RenderPDF(ctx context.Context, html string) ([]byte, error) {
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	allocCtx, cancelAlloc := chromedp.NewExecAllocator(ctx, r.opts...)
	defer cancelAlloc()
	browserCtx, cancelBrowser := chromedp.NewContext(allocCtx)
	defer cancelBrowser()

	var pdfBuf []byte
	err := chromedp.Run(browserCtx,
		chromedp.Navigate("about:blank"),
		chromedp.ActionFunc(func(ctx context.Context) error {
			tree, err := page.GetFrameTree().Do(ctx)
			if err != nil {
				return err
			}
			return page.SetDocumentContent(tree.Frame.ID, html).Do(ctx)
		}),
		chromedp.WaitReady("body"),
		chromedp.ActionFunc(func(ctx context.Context) error {
			var err error
			pdfBuf, _, err = page.PrintToPDF().
				WithPrintBackground(true).
				WithPaperWidth(8.27).  // A4 width
				WithPaperHeight(11.7). // A4 height
				Do(ctx)
			return err
		}),
	)
	if err != nil {
		return nil, fmt.Errorf("print quote PDF: %w", err)
	}
	return pdfBuf, nil
}
