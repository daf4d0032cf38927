package types

// ProductMetadata is the final result of one extraction call.
type ProductMetadata struct {
	// Title is always non-empty; worst case it is derived from the URL.
	Title string `json:"title"`

	// Image is an absolute http/https URL, or "" when no usable candidate
	// was found.
	Image string `json:"image"`

	// Price is a canonical numeric string ("1234.56"), or nil when no
	// candidate normalized.
	Price *string `json:"price"`

	// SourceURL is the post-redirect URL the page was fetched from.
	SourceURL string `json:"sourceUrl"`
}

// Extraction holds the candidates gathered from a single structured-data
// block. Candidates live only for the duration of one extraction call.
type Extraction struct {
	Titles *StringSet
	Images *StringSet
	Prices *StringSet
}

// NewExtraction creates an empty Extraction.
func NewExtraction() Extraction {
	return Extraction{
		Titles: NewStringSet(),
		Images: NewStringSet(),
		Prices: NewStringSet(),
	}
}

// Empty reports whether the extraction contributed no candidates at all.
func (e Extraction) Empty() bool {
	return e.Titles.Len() == 0 && e.Images.Len() == 0 && e.Prices.Len() == 0
}

// StringSet is an insertion-ordered set of strings. Order matters: downstream
// selection breaks ties by first-seen position.
type StringSet struct {
	seen   map[string]struct{}
	values []string
}

// NewStringSet creates an empty StringSet.
func NewStringSet() *StringSet {
	return &StringSet{seen: make(map[string]struct{})}
}

// Add inserts v unless it is empty or already present.
func (s *StringSet) Add(v string) {
	if v == "" {
		return
	}
	if _, ok := s.seen[v]; ok {
		return
	}
	s.seen[v] = struct{}{}
	s.values = append(s.values, v)
}

// AddAll inserts every value from other, preserving its order.
func (s *StringSet) AddAll(other *StringSet) {
	for _, v := range other.values {
		s.Add(v)
	}
}

// Values returns the members in insertion order.
func (s *StringSet) Values() []string {
	return s.values
}

// Len returns the number of members.
func (s *StringSet) Len() int {
	return len(s.values)
}
