package csvexport

import (
	"bytes"
	"html/template"
	"regexp"
	"strings"

	"github.com/recordroom/vinyl-lister/internal/models"
)

var damageLabels = map[string]string{
	"上部(下部)の裂け": "Seam Split",
	"角潰れ":       "Corner Dings",
	"シワ":        "Creases",
	"シミ":        "Stains",
	"ラベル剥がれ":    "Sticker Damage",
}

type descriptionData struct {
	Title   string
	Label   string
	Artist  string
	Format  string
	Country string
	Sleeve  string
	Vinyl   string
	Obi     string
	Damage  []string
	Comment string
}

var descriptionTemplate = template.Must(template.New("description").Parse(`
<div style="font-family: Arial, sans-serif; max-width: 900px; margin: auto;">
  <h1 style="font-size: 24px; border-bottom: 2px solid #ccc; padding-bottom: 10px;">{{.Title}}</h1>
  <p style="margin: 16px 0;">
    Our records are pre-owned. Please note that they may have wear, odor, or other signs of aging.<br><br>
    Only purchase if you understand and accept these conditions.
  </p>
  <table style="width:100%; border-collapse:collapse; margin-top:20px;">
    <tbody>
      <tr>
        <td style="vertical-align:top; padding-right:20px;">
          <h2 style="font-size:20px;">Key Features</h2>
          <ul style="list-style:none; padding:0; line-height:1.8;">
            <li>- <strong>Brand:</strong> {{or .Label "Not specified"}}</li>
            <li>- <strong>Artist:</strong> {{or .Artist "Not specified"}}</li>
            <li>- <strong>Product Type:</strong> Record</li>
            <li>- <strong>Format:</strong> {{or .Format "Not specified"}}</li>
            <br>
            <li>- <strong>Condition:</strong></li>
            <li>&nbsp;&nbsp;• Sleeve: {{.Sleeve}}</li>
            <li>&nbsp;&nbsp;• Vinyl: {{.Vinyl}}</li>
            <li>&nbsp;&nbsp;• OBI Strip: {{.Obi}}</li>
            <br>
            <li>- <strong>Jacket Damage:</strong><br>{{if .Damage}}{{range $i, $d := .Damage}}{{if $i}}<br>{{end}}- {{$d}}{{end}}{{else}}None{{end}}</li>
          </ul>
        </td>
        <td style="width:300px; vertical-align:top;">
          <h2 style="font-size:20px;">Specifications</h2>
          <table style="width:100%; border-collapse:collapse;">
            <tbody>
              <tr><td style="padding:8px; border-bottom:1px solid #eee; font-weight:bold;">Brand</td><td style="padding:8px; border-bottom:1px solid #eee;">{{.Label}}</td></tr>
              <tr><td style="padding:8px; border-bottom:1px solid #eee; font-weight:bold;">Country</td><td style="padding:8px; border-bottom:1px solid #eee;">{{.Country}}</td></tr>
            </tbody>
          </table>
        </td>
      </tr>
    </tbody>
  </table>
  <h2 style="font-size:20px; border-bottom:2px solid #ccc; padding-bottom:10px; margin-top:40px;">Description</h2>
  {{if .Comment}}<p>{{.Comment}}</p>{{end}}
  <p>If you have any questions, feel free to contact us.<br>All my products are 100% Authentic.</p>
  <h2 style="font-size:20px; border-bottom:2px solid #ccc; padding-bottom:10px; margin-top:40px;">Shipping</h2>
  <p>
    Shipping by FedEx, DHL, or Japan Post.<br><br>
    When shipping with Japan Post, the delivery date may be later than the estimated date shown on eBay. Delays are unpredictable.<br><br>
    Sometimes the post office may hold the package and not send it. They may not contact you or leave a notice, so please continue to reach out until you get through to them.<br><br>
    [Important] If the item does not arrive on time, please do not open a case. Contact me first so I can assist.<br><br>
    When you receive the item, please leave feedback.
  </p>
  <h2 style="font-size:20px; border-bottom:2px solid #ccc; padding-bottom:10px; margin-top:40px;">International Buyers - Please Note:</h2>
  <p>Import duties, taxes and charges are not included in the item price or shipping charges and are the buyer’s responsibility.</p>
</div>`))

var (
	lineBreaks = regexp.MustCompile(`\r?\n|\r`)
	whitespace = regexp.MustCompile(`\s\s+`)
)

// Description renders the listing HTML on a single line. Every value is
// HTML-escaped by the template.
func Description(title string, ai *models.AnalysisResult, user *models.UserInput) (string, error) {
	if ai == nil {
		ai = &models.AnalysisResult{}
	}
	if user == nil {
		user = &models.UserInput{}
	}

	data := descriptionData{
		Title:   title,
		Label:   ai.RecordLabel,
		Artist:  firstNonEmpty(user.Artist, ai.Artist),
		Format:  ai.Format,
		Country: ai.Country,
		Sleeve:  user.ConditionSleeve,
		Vinyl:   user.ConditionVinyl,
		Obi:     "Not Included",
		Comment: strings.TrimSpace(user.Comment),
	}
	if hasObi(user.Obi) {
		data.Obi = user.Obi
	}
	for _, d := range user.JacketDamage {
		if label, ok := damageLabels[d]; ok {
			d = label
		}
		data.Damage = append(data.Damage, d)
	}

	var buf bytes.Buffer
	if err := descriptionTemplate.Execute(&buf, data); err != nil {
		return "", err
	}
	return collapse(buf.String()), nil
}

func collapse(s string) string {
	s = lineBreaks.ReplaceAllString(s, " ")
	s = whitespace.ReplaceAllString(s, " ")
	return strings.TrimSpace(s)
}
