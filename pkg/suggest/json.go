package suggest

import "encoding/json"

func marshalIDs(ids []ProviderID) ([]byte, error) {
	if ids == nil {
		ids = []ProviderID{}
	}
	return json.Marshal(ids)
}

// UnmarshalJSON accepts a list of ids.
func (s *ProviderSet) UnmarshalJSON(b []byte) error {
	var ids []ProviderID
	if err := json.Unmarshal(b, &ids); err != nil {
		return err
	}
	*s = NewProviderSet(ids...)
	return nil
}
