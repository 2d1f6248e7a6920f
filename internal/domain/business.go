package domain

// Business is a Hellopeter business as stored locally. Identity fields are
// first-write-wins: once a slug exists, later fetches never rename it.
type Business struct {
	ID           int64
	Slug         string
	Name         string
	IndustryName *string
	IndustrySlug *string
}

// BusinessInfo is the identity derived during a fetch session, before the
// business row exists. Name falls back to the slug when the remote payload
// carried no usable business fields.
type BusinessInfo struct {
	Slug         string
	Name         string
	IndustryName *string
	IndustrySlug *string
}

// MinimalInfo synthesizes an info record for a slug with no remote identity.
func MinimalInfo(slug string) *BusinessInfo {
	return &BusinessInfo{Slug: slug, Name: slug}
}
