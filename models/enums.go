package models

type Category string

const (
	CategoryPBSA          Category = "PBSA"
	CategorySocialHousing Category = "Social Housing"
	CategoryBuildToRent   Category = "Build to Rent"
	CategoryRiskTransfer  Category = "Risk Transfer"
	CategoryNews          Category = "News"
)

// Categories lists the closed set in editor display order.
var Categories = []Category{
	CategoryPBSA,
	CategorySocialHousing,
	CategoryBuildToRent,
	CategoryRiskTransfer,
	CategoryNews,
}

func (c Category) Valid() bool {
	for _, known := range Categories {
		if c == known {
			return true
		}
	}
	return false
}

type CTAType string

const (
	CTAContact  CTAType = "contact"
	CTAServices CTAType = "services"
	CTAPip      CTAType = "pip"
	CTACustom   CTAType = "custom"
)

func (t CTAType) Valid() bool {
	switch t {
	case CTAContact, CTAServices, CTAPip, CTACustom:
		return true
	}
	return false
}
