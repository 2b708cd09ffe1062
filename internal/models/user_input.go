package models

// UserInput holds the listing fields the operator confirmed or overrode
type UserInput struct {
	Title            string   `json:"title,omitempty"`
	Artist           string   `json:"artist,omitempty"`
	Price            string   `json:"price,omitempty"`
	Shipping         string   `json:"shipping,omitempty"`
	ProductCondition string   `json:"productCondition,omitempty"`
	ConditionSleeve  string   `json:"conditionSleeve,omitempty"`
	ConditionVinyl   string   `json:"conditionVinyl,omitempty"`
	Obi              string   `json:"obi,omitempty"`
	JacketDamage     []string `json:"jacketDamage,omitempty"`
	Comment          string   `json:"comment,omitempty"`
	Category         string   `json:"category,omitempty"`
}

// UserInputPatch is a partial save. Nil fields were not sent and leave the
// stored value untouched.
type UserInputPatch struct {
	Title            *string   `json:"title,omitempty"`
	Artist           *string   `json:"artist,omitempty"`
	Price            *string   `json:"price,omitempty"`
	Shipping         *string   `json:"shipping,omitempty"`
	ProductCondition *string   `json:"productCondition,omitempty"`
	ConditionSleeve  *string   `json:"conditionSleeve,omitempty"`
	ConditionVinyl   *string   `json:"conditionVinyl,omitempty"`
	Obi              *string   `json:"obi,omitempty"`
	JacketDamage     *[]string `json:"jacketDamage,omitempty"`
	Comment          *string   `json:"comment,omitempty"`
	Category         *string   `json:"category,omitempty"`
}

// Merge applies the non-nil fields of p onto u.
func (u *UserInput) Merge(p UserInputPatch) {
	set := func(dst *string, src *string) {
		if src != nil {
			*dst = *src
		}
	}
	set(&u.Title, p.Title)
	set(&u.Artist, p.Artist)
	set(&u.Price, p.Price)
	set(&u.Shipping, p.Shipping)
	set(&u.ProductCondition, p.ProductCondition)
	set(&u.ConditionSleeve, p.ConditionSleeve)
	set(&u.ConditionVinyl, p.ConditionVinyl)
	set(&u.Obi, p.Obi)
	set(&u.Comment, p.Comment)
	set(&u.Category, p.Category)
	if p.JacketDamage != nil {
		u.JacketDamage = append([]string(nil), (*p.JacketDamage)...)
	}
}
