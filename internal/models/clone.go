package models

// Clone returns a deep copy safe to hand to readers while the batch keeps
// mutating the original.
func (s *Session) Clone() *Session {
	if s == nil {
		return nil
	}
	out := *s
	out.Categories = append([]Category(nil), s.Categories...)
	out.ShippingOptions = append([]string(nil), s.ShippingOptions...)
	out.Records = make([]*Record, len(s.Records))
	for i, r := range s.Records {
		out.Records[i] = r.Clone()
	}
	return &out
}

func (r *Record) Clone() *Record {
	if r == nil {
		return nil
	}
	out := *r
	if r.Images != nil {
		out.Images = append([]ImageRef(nil), r.Images...)
	}
	if r.AIData != nil {
		ai := *r.AIData
		out.AIData = &ai
	}
	if r.UserInput != nil {
		ui := *r.UserInput
		ui.JacketDamage = append([]string(nil), r.UserInput.JacketDamage...)
		out.UserInput = &ui
	}
	return &out
}

// FindRecord returns the record with the given id, or nil.
func (s *Session) FindRecord(recordID string) *Record {
	for _, r := range s.Records {
		if r.ID == recordID {
			return r
		}
	}
	return nil
}
