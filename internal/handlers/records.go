package handlers

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/recordroom/vinyl-lister/internal/models"
)

// HandleResearch re-analyzes one record, excluding its current match.
func (h *Handler) HandleResearch(w http.ResponseWriter, r *http.Request) {
	ai, err := h.processor.Reanalyze(r.Context(), r.PathValue("sessionId"), r.PathValue("recordId"))
	if err != nil {
		h.writeErr(w, err)
		return
	}
	h.writeJSON(w, map[string]any{"status": "ok", "aiData": ai})
}

// HandleSave stores the operator's listing fields and marks the record saved.
func (h *Handler) HandleSave(w http.ResponseWriter, r *http.Request) {
	patch, err := decodePatch(r)
	if err != nil {
		h.writeError(w, err.Error(), http.StatusBadRequest)
		return
	}
	if err := h.saver.Save(r.Context(), r.PathValue("sessionId"), r.PathValue("recordId"), patch); err != nil {
		h.writeErr(w, err)
		return
	}
	h.writeJSON(w, map[string]string{"status": "ok"})
}

type savePayload struct {
	models.UserInputPatch
	PriceOther *string `json:"priceOther,omitempty"`
}

func decodePatch(r *http.Request) (models.UserInputPatch, error) {
	var p savePayload
	if strings.Contains(r.Header.Get("Content-Type"), "application/json") {
		if err := json.NewDecoder(r.Body).Decode(&p); err != nil {
			return models.UserInputPatch{}, fmt.Errorf("invalid JSON: %w", err)
		}
	} else {
		if err := r.ParseForm(); err != nil {
			return models.UserInputPatch{}, fmt.Errorf("invalid form: %w", err)
		}
		p = patchFromForm(r.PostForm)
	}

	if p.Price != nil && *p.Price == "other" {
		p.Price = p.PriceOther
		if p.Price == nil {
			empty := ""
			p.Price = &empty
		}
	}
	return p.UserInputPatch, nil
}

func patchFromForm(form url.Values) savePayload {
	field := func(key string) *string {
		if _, ok := form[key]; !ok {
			return nil
		}
		v := form.Get(key)
		return &v
	}

	p := savePayload{
		UserInputPatch: models.UserInputPatch{
			Title:            field("title"),
			Artist:           field("artist"),
			Price:            field("price"),
			Shipping:         field("shipping"),
			ProductCondition: field("productCondition"),
			ConditionSleeve:  field("conditionSleeve"),
			ConditionVinyl:   field("conditionVinyl"),
			Obi:              field("obi"),
			Comment:          field("comment"),
			Category:         field("category"),
		},
		PriceOther: field("priceOther"),
	}

	for _, key := range []string{"jacketDamage", "jacketDamage[]"} {
		if vals, ok := form[key]; ok {
			damage := append([]string(nil), vals...)
			p.JacketDamage = &damage
		}
	}
	return p
}
