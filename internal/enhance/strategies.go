package enhance

import (
	"context"
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"mspro-labs/bean-atlas/internal/fetch"
	"mspro-labs/bean-atlas/internal/models"
	"mspro-labs/bean-atlas/internal/textutil"
)

// DefaultCountry sets a roaster-wide origin on records that have none.
// Useful for single-origin roasters whose whole catalog shares a country.
type DefaultCountry struct {
	Country string
}

func (s DefaultCountry) Enhance(_ context.Context, c *models.Coffee) error {
	if c.Country == "" && s.Country != "" {
		c.Country = s.Country
	}
	return nil
}

// The pattern list is ordered; the first match wins. Do not reorder:
// changing precedence silently changes extraction results for data that
// has already been scraped.
var notePatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)notes of\s+([^.!?;]+)`),
	regexp.MustCompile(`(?i)tasting notes:?\s+([^.!?;]+)`),
	regexp.MustCompile(`(?i)aromas? of\s+([^.!?;]+)`),
	regexp.MustCompile(`(?i)in the cup[,:]?\s+([^.!?;]+)`),
	regexp.MustCompile(`(?i)expect\s+([^.!?;]+)`),
}

// A trailing "and a …" / "with a …" is prose, not another list entry.
var reTrailingFragment = regexp.MustCompile(`(?i)[,;]?\s+(?:and|with)\s+a\s+.*$`)

// NotePatterns digs tasting notes out of description prose when nothing
// structured provided them.
type NotePatterns struct{}

func (NotePatterns) Enhance(_ context.Context, c *models.Coffee) error {
	if len(c.Notes) > 0 || c.Description == "" {
		return nil
	}
	for _, re := range notePatterns {
		m := re.FindStringSubmatch(c.Description)
		if m == nil {
			continue
		}
		phrase := reTrailingFragment.ReplaceAllString(m[1], "")
		if notes := textutil.Dedupe(textutil.SplitList(phrase)); len(notes) > 0 {
			c.Notes = notes
		}
		return nil
	}
	return nil
}

// DetailPage scrapes the product page itself for labelled attribute rows
// ("Origin: Ethiopia" style lists many storefront themes render).
type DetailPage struct {
	Fetcher fetch.Fetcher
}

var detailLabels = map[string]func(c *models.Coffee, v string){
	"origin":        fillCountry,
	"country":       fillCountry,
	"region":        func(c *models.Coffee, v string) { fill(&c.Region, v) },
	"producer":      fillProducer,
	"farm":          fillProducer,
	"process":       fillProcess,
	"processing":    fillProcess,
	"variety":       fillVariety,
	"varietal":      fillVariety,
	"certification": func(c *models.Coffee, v string) { fill(&c.Protocol, v) },
	"notes": func(c *models.Coffee, v string) {
		if len(c.Notes) == 0 {
			c.Notes = textutil.Dedupe(textutil.SplitList(v))
		}
	},
}

func fill(dst *string, v string) {
	if *dst == "" {
		*dst = v
	}
}

func fillCountry(c *models.Coffee, v string)  { fill(&c.Country, v) }
func fillProducer(c *models.Coffee, v string) { fill(&c.Producer, v) }
func fillProcess(c *models.Coffee, v string)  { fill(&c.Process, v) }
func fillVariety(c *models.Coffee, v string)  { fill(&c.Variety, v) }

func (s DetailPage) Enhance(ctx context.Context, c *models.Coffee) error {
	if c.URL == "" || c.Complete() {
		return nil
	}
	html, err := s.Fetcher.Page(ctx, c.URL)
	if err != nil {
		return err
	}
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return err
	}
	doc.Find("li, tr, p").Each(func(_ int, sel *goquery.Selection) {
		label, value, ok := strings.Cut(strings.TrimSpace(sel.Text()), ":")
		if !ok {
			return
		}
		apply, known := detailLabels[strings.ToLower(strings.TrimSpace(label))]
		if !known {
			return
		}
		if v := strings.TrimSpace(value); v != "" {
			apply(c, v)
		}
	})
	return nil
}
