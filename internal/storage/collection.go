package storage

// Collection is one of the six persisted record collections.
type Collection int

const (
	Users Collection = iota
	GroupCodes
	Consumption
	Bills
	Payments
	Rates
)

var collectionNames = [...]string{
	Users:       "users",
	GroupCodes:  "group_codes",
	Consumption: "consumption",
	Bills:       "bills",
	Payments:    "payments",
	Rates:       "rates",
}

// Collections returns every collection in a fixed order.
func Collections() []Collection {
	return []Collection{Users, GroupCodes, Consumption, Bills, Payments, Rates}
}

// Name is the collection's key suffix and its field name in export envelopes.
func (c Collection) Name() string {
	if c < 0 || int(c) >= len(collectionNames) {
		return "unknown"
	}
	return collectionNames[c]
}

func (c Collection) String() string { return c.Name() }

// ParseCollection maps a collection name to its Collection. "shared_codes"
// is accepted for GroupCodes.
func ParseCollection(name string) (Collection, bool) {
	if name == "shared_codes" {
		return GroupCodes, true
	}
	for i, n := range collectionNames {
		if n == name {
			return Collection(i), true
		}
	}
	return 0, false
}
