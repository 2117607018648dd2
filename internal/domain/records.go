package domain

// Capacities of the fixed string buffers. Oversized input is truncated to
// these, never rejected.
const (
	DishNameCap   = 50
	ReviewTextCap = 200
)

// UserStats counts visits by one user to one restaurant.
// visit_count only ever goes up.
type UserStats struct {
	User       ID
	Restaurant ID
	VisitCount uint64
}

// DishStats counts orders of one dish by one user. The name buffer is
// written once at init and never rewritten.
type DishStats struct {
	User     ID
	Dish     ID
	Count    uint64
	NameLen  uint32
	NameData [DishNameCap]byte
}

// Name returns the stored dish name (the first NameLen bytes of the buffer).
func (d *DishStats) Name() string {
	n := d.NameLen
	if n > DishNameCap {
		n = DishNameCap
	}
	return string(d.NameData[:n])
}

// SetName truncates name to the buffer capacity and records the stored length.
func (d *DishStats) SetName(name string) {
	b := []byte(name)
	n := len(b)
	if n > DishNameCap {
		n = DishNameCap
	}
	d.NameData = [DishNameCap]byte{}
	copy(d.NameData[:n], b[:n])
	d.NameLen = uint32(n)
}

// Review is a single-use review of a restaurant by a user. Once ReviewLen is
// non-zero the record is frozen.
type Review struct {
	User            ID
	Restaurant      ID
	Rating          uint8 // 1-5
	ReviewLen       uint32
	ReviewData      [ReviewTextCap]byte
	ConfidenceLevel uint8 // 1-10
}

func (r *Review) Text() string {
	n := r.ReviewLen
	if n > ReviewTextCap {
		n = ReviewTextCap
	}
	return string(r.ReviewData[:n])
}

func (r *Review) SetText(text string) {
	b := []byte(text)
	n := len(b)
	if n > ReviewTextCap {
		n = ReviewTextCap
	}
	r.ReviewData = [ReviewTextCap]byte{}
	copy(r.ReviewData[:n], b[:n])
	r.ReviewLen = uint32(n)
}

// Written reports whether the write-once guard is set.
func (r *Review) Written() bool { return r.ReviewLen > 0 }

// DishUpdate is one entry of BookTable's auxiliary record list. The original
// wire form was a flat list walked two at a time; this keeps the pair shape
// explicit. Reserved is accepted and ignored.
type DishUpdate struct {
	Stats    Key
	Reserved Key
}

// Read models served by the query side.

type UserStatsView struct {
	User       string `json:"user"`
	Restaurant string `json:"restaurant"`
	VisitCount uint64 `json:"visit_count"`
}

type DishStatsView struct {
	User  string `json:"user"`
	Dish  string `json:"dish"`
	Count uint64 `json:"count"`
	Name  string `json:"name"`
}

type ReviewView struct {
	User            string `json:"user"`
	Restaurant      string `json:"restaurant"`
	Rating          uint8  `json:"rating"`
	ConfidenceLevel uint8  `json:"confidence_level"`
	Review          string `json:"review"`
}
