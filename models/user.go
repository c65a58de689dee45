package models

// Profile holds the editable user record under users/{uid}. The cart
// subtree lives under the same node but is owned by the cart package.
type Profile struct {
	Name        string `json:"name"`
	Email       string `json:"email"`
	PhoneNumber string `json:"phoneNumber"`
	Gender      string `json:"gender"`
	Point       int    `json:"point"`
}
