package config

import (
	"context"
	"fmt"
	"os"

	"github.com/recordroom/vinyl-lister/internal/models"
	"gopkg.in/yaml.v3"
)

// Profile holds the seller-specific constants written into every CSV row.
type Profile struct {
	DefaultCategory  string            `yaml:"default_category"`
	StoreCategory    string            `yaml:"store_category"`
	PayPalEmail      string            `yaml:"paypal_email"`
	PaymentProfile   string            `yaml:"payment_profile"`
	ReturnProfile    string            `yaml:"return_profile"`
	ShippingTemplate string            `yaml:"shipping_template"`
	Country          string            `yaml:"country"`
	Location         string            `yaml:"location"`
	Currency         string            `yaml:"currency"`
	SiteID           string            `yaml:"site_id"`
	Duration         string            `yaml:"duration"`
	ConditionUsed    string            `yaml:"condition_used"`
	ConditionNew     string            `yaml:"condition_new"`
	Categories       []models.Category `yaml:"categories"`
	ShippingOptions  []string          `yaml:"shipping_options"`
}

// DefaultProfile is the shop configuration the tool shipped with.
func DefaultProfile() *Profile {
	return &Profile{
		DefaultCategory:  "176985",
		StoreCategory:    "41903496010",
		PayPalEmail:      "payAddress",
		PaymentProfile:   "buy it now",
		ReturnProfile:    "Seller 60days",
		ShippingTemplate: "#{shipping}-DHL FedEx 00.00 - 06.50kg",
		Country:          "JP",
		Location:         "417-0816, Fuji Shizuoka",
		Currency:         "USD",
		SiteID:           "US",
		Duration:         "GTC",
		ConditionUsed:    "3000",
		ConditionNew:     "1000",
		Categories: []models.Category{
			{Name: "Records", Code: "176985"},
		},
	}
}

// LoadProfile reads a YAML profile. Keys absent from the file keep their
// DefaultProfile values. An empty path returns the defaults.
func LoadProfile(path string) (*Profile, error) {
	p := DefaultProfile()
	if path == "" {
		return p, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read profile: %w", err)
	}
	if err := yaml.Unmarshal(data, p); err != nil {
		return nil, fmt.Errorf("failed to parse profile %s: %w", path, err)
	}
	return p, nil
}

// StaticSource serves categories and shipping options from a Profile when
// no spreadsheet is configured.
type StaticSource struct {
	Profile *Profile
}

func (s StaticSource) GetCategories(ctx context.Context) ([]models.Category, error) {
	return append([]models.Category(nil), s.Profile.Categories...), nil
}

func (s StaticSource) GetShippingOptions(ctx context.Context) ([]string, error) {
	return append([]string(nil), s.Profile.ShippingOptions...), nil
}
