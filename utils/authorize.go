package utils

import "go.mongodb.org/mongo-driver/bson/primitive"

// IsOwner reports whether the acting user owns the resource. The session
// identity travels as a hex string while the stored owner reference is an
// ObjectID, so the comparison is done on the normalized string form.
func IsOwner(userID string, owner primitive.ObjectID) bool {
	return userID != "" && owner.Hex() == userID
}
