package domain

// FavoriteSet is the set of products a visitor marked as favorites.
// ProductIDs holds no duplicates; order is not meaningful.
type FavoriteSet struct {
	Scope      Scope    `json:"scope"`
	ProductIDs []string `json:"productIds"`
}

// Contains reports whether productID is in the set.
func (f FavoriteSet) Contains(productID string) bool {
	for _, id := range f.ProductIDs {
		if id == productID {
			return true
		}
	}
	return false
}

// IsEmpty reports whether the set has no products.
func (f FavoriteSet) IsEmpty() bool {
	return len(f.ProductIDs) == 0
}
