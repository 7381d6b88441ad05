package model

// Room statuses. A room flips to occupied once its tenant count reaches
// capacity and back to available when tenants are removed.
const (
	RoomAvailable = "available"
	RoomOccupied  = "occupied"
)

// ValidCapacity reports whether n is an allowed room capacity.
func ValidCapacity(n int) bool { return n == 4 || n == 6 }

// Room mirrors the `rooms` table. Tenants live in the room_tenants join
// table and are loaded on demand.
type Room struct {
	ID          uint64
	Number      string
	Status      string
	Capacity    int
	HostelID    uint64
	HostelName  string // joined from hostels on reads, not a column
	HostelSlug  string // joined from hostels on reads, not a column
	TenantCount int    // counted from room_tenants on reads
}

// Occupant is the trimmed tenant view returned by the occupants endpoint.
type Occupant struct {
	ID        uint64 `json:"id"`
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	Email     string `json:"email"`
}
