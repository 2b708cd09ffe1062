// Package csvexport renders saved records as a marketplace bulk-upload file.
package csvexport

import (
	"bytes"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/recordroom/vinyl-lister/internal/config"
	"github.com/recordroom/vinyl-lister/internal/images"
	"github.com/recordroom/vinyl-lister/internal/models"
)

// ContentType is the response type for an exported file.
const ContentType = "text/csv; charset=UTF-8"

const bom = "\uFEFF"

// Exporter builds CSV documents using a seller profile.
type Exporter struct {
	profile *config.Profile
}

// New returns an Exporter. A nil profile uses config.DefaultProfile.
func New(profile *config.Profile) *Exporter {
	if profile == nil {
		profile = config.DefaultProfile()
	}
	return &Exporter{profile: profile}
}

// FileName is the download name for an export made at t.
func FileName(t time.Time) string {
	return t.Format("20060102") + ".csv"
}

// Rows returns the header followed by one row per saved record, in
// session order. Records in any other state are left out.
func (e *Exporter) Rows(session *models.Session) ([][]string, error) {
	rows := [][]string{append([]string(nil), Columns...)}
	for _, rec := range session.Records {
		if rec.Status != models.RecordSaved {
			continue
		}
		r, err := e.recordRow(session, rec)
		if err != nil {
			return nil, fmt.Errorf("record %s: %w", rec.ID, err)
		}
		rows = append(rows, r)
	}
	return rows, nil
}

// Write renders the session as a BOM-prefixed document with every cell
// quoted and rows separated by a bare newline.
func (e *Exporter) Write(w io.Writer, session *models.Session) error {
	rows, err := e.Rows(session)
	if err != nil {
		return err
	}

	var buf bytes.Buffer
	buf.WriteString(bom)
	for i, r := range rows {
		if i > 0 {
			buf.WriteByte('\n')
		}
		for j, cell := range r {
			if j > 0 {
				buf.WriteByte(',')
			}
			buf.WriteString(quote(cell))
		}
	}
	_, err = w.Write(buf.Bytes())
	return err
}

// Export is Write into a byte slice.
func (e *Exporter) Export(session *models.Session) ([]byte, error) {
	var buf bytes.Buffer
	if err := e.Write(&buf, session); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func quote(s string) string {
	return `"` + strings.ReplaceAll(s, `"`, `""`) + `"`
}

func (e *Exporter) recordRow(session *models.Session, rec *models.Record) (row, error) {
	ai := rec.AIData
	if ai == nil {
		ai = &models.AnalysisResult{}
	}
	user := rec.UserInput
	if user == nil {
		user = &models.UserInput{}
	}
	p := e.profile

	title := ListingTitle(ai, user)
	desc, err := Description(title, ai, user)
	if err != nil {
		return nil, fmt.Errorf("failed to render description: %w", err)
	}

	condition := p.ConditionUsed
	if isNew(user.ProductCondition) {
		condition = p.ConditionNew
	}

	shipping := ""
	if user.Shipping != "" {
		shipping = strings.ReplaceAll(p.ShippingTemplate, "{shipping}", user.Shipping)
	}

	r := newRow()
	r.set("Action(CC=Cp1252)", "Add")
	r.set("CustomLabel", rec.CustomLabel)
	r.set("StartPrice", user.Price)
	r.set("ConditionID", condition)
	r.set("Title", title)
	r.set("Description", desc)
	r.set("C:Brand", ai.RecordLabel)
	r.set("PicURL", pictureURLs(rec.Images))
	r.set("Category", firstNonEmpty(user.Category, session.DefaultCategory, p.DefaultCategory))
	r.set("PayPalAccepted", "1")
	r.set("PayPalEmailAddress", p.PayPalEmail)
	r.set("PaymentProfileName", p.PaymentProfile)
	r.set("ReturnProfileName", p.ReturnProfile)
	r.set("ShippingProfileName", shipping)
	r.set("Country", p.Country)
	r.set("Location", p.Location)
	r.set("StoreCategory", p.StoreCategory)
	r.set("Apply Profile Domestic", "0")
	r.set("Apply Profile International", "0")
	r.set("BuyerRequirements:LinkedPayPalAccount", "0")
	r.set("Duration", p.Duration)
	r.set("Format", "FixedPriceItem")
	r.set("Quantity", "1")
	r.set("Currency", p.Currency)
	r.set("SiteID", p.SiteID)
	r.set("C:Country", ai.Country)
	r.set("BestOfferEnabled", "0")
	r.set("C:Artist", firstNonEmpty(user.Artist, ai.Artist))
	r.set("C:Material", ai.Material)
	r.set("C:Release Title", title)
	r.set("C:Genre", ai.Genre)
	r.set("C:Record Label", ai.RecordLabel)
	r.set("C:Style", ai.Style)
	r.set("C:Format", ai.Format)
	r.set("C:Release Year", string(ai.Released))
	r.set("C:Record Grading", user.ConditionVinyl)
	r.set("C:Sleeve Grading", user.ConditionSleeve)
	r.set("C:Country/Region of Manufacture", ai.Country)
	r.set("C:MPN", firstNonEmpty(ai.MPN, ai.CatalogNumber))
	r.set("C:Catalog Number", ai.CatalogNumber)
	if hasObi(user.Obi) {
		r.set("C:Language", "Japanese (with Obi strip)")
		r.set("C:Features", "Obi Strip")
	} else {
		r.set("C:Language", "Unknown")
	}
	return r, nil
}

// ListingTitle is the operator's title, else the analyzed one, with
// " w/OBI" appended when an obi is present and the title lacks it.
func ListingTitle(ai *models.AnalysisResult, user *models.UserInput) string {
	title := user.Title
	if title == "" && ai != nil {
		title = ai.Title
	}
	if hasObi(user.Obi) && title != "" && !strings.Contains(strings.ToLower(title), "w/obi") {
		title += " w/OBI"
	}
	return title
}

func pictureURLs(refs []models.ImageRef) string {
	sorted := append([]models.ImageRef(nil), refs...)
	images.Sort(sorted)
	urls := make([]string, 0, len(sorted))
	for _, ref := range sorted {
		if ref.URL != "" {
			urls = append(urls, ref.URL)
		}
	}
	return strings.Join(urls, "|")
}

func hasObi(obi string) bool {
	switch strings.ToLower(strings.TrimSpace(obi)) {
	case "", "なし", "none", "no", "not included", "not applicable", "na", "n/a":
		return false
	}
	return true
}

func isNew(condition string) bool {
	c := strings.ToLower(strings.TrimSpace(condition))
	return c == "new" || c == "新品"
}

func firstNonEmpty(vals ...string) string {
	for _, v := range vals {
		if v != "" {
			return v
		}
	}
	return ""
}
