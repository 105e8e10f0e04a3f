package store

// NopStore is a no-op ledger used in dry-run mode. Nothing is ever admitted,
// so every record appears new on each cycle.
type NopStore struct{}

func NewNopStore() *NopStore { return &NopStore{} }

func (s *NopStore) Exists(key string) (bool, error)              { return false, nil }
func (s *NopStore) ExistsLink(link string) (bool, error)         { return false, nil }
func (s *NopStore) Admit(key, link, source string) (bool, error) { return true, nil }
