package domain

import "go.mongodb.org/mongo-driver/v2/bson"

// NewID returns a fresh 24-character hex object identifier.
func NewID() string {
	return bson.NewObjectID().Hex()
}

// ParseID returns the canonical lowercase form of id, and false when id is
// not a well-formed object identifier.
func ParseID(id string) (string, bool) {
	oid, err := bson.ObjectIDFromHex(id)
	if err != nil {
		return "", false
	}
	return oid.Hex(), true
}

// ValidID reports whether id is a well-formed object identifier.
func ValidID(id string) bool {
	_, ok := ParseID(id)
	return ok
}
