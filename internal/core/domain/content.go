package domain

import "strconv"

// ContentType identifies one of the searchable collections.
type ContentType string

const (
	ContentBusiness ContentType = "business"
	ContentListing  ContentType = "listing"
	ContentDeal     ContentType = "deal"
	ContentEvent    ContentType = "event"
	ContentNews     ContentType = "news"
)

// ContentTypes lists every collection in display order.
var ContentTypes = []ContentType{
	ContentBusiness, ContentListing, ContentDeal, ContentEvent, ContentNews,
}

// Listing is a classified ad. ListingType selects the field rule table
// (imoveis, carros, empregos, lugares).
type Listing struct {
	ID              string   `json:"id"`
	Title           string   `json:"title"`
	Neighborhood    string   `json:"neighborhood"`
	ListingType     string   `json:"listingType"`
	Tags            []string `json:"tags"`
	Price           float64  `json:"price,omitempty"`
	RentPrice       float64  `json:"rentPrice,omitempty"`
	Year            int      `json:"year,omitempty"`
	Rating          float64  `json:"rating,omitempty"`
	PostedAt        string   `json:"postedAt,omitempty"`
	TransactionType string   `json:"transactionType,omitempty"`
	PropertyType    string   `json:"propertyType,omitempty"`
	SellerType      string   `json:"sellerType,omitempty"`
	EmploymentType  string   `json:"employmentType,omitempty"`
	WorkModel       string   `json:"workModel,omitempty"`
	PriceLevel      string   `json:"priceLevel,omitempty"`
}

// TagList implements tags.Filterable.
func (l Listing) TagList() []string {
	return l.Tags
}

// FieldValue implements tags.Filterable.
func (l Listing) FieldValue(name string) (string, bool) {
	switch name {
	case "transactionType":
		return l.TransactionType, true
	case "propertyType":
		return l.PropertyType, true
	case "sellerType":
		return l.SellerType, true
	case "employmentType":
		return l.EmploymentType, true
	case "workModel":
		return l.WorkModel, true
	case "priceLevel":
		return l.PriceLevel, true
	case "neighborhood":
		return l.Neighborhood, true
	case "year":
		return strconv.Itoa(l.Year), true
	}
	return "", false
}

// Deal is a time-limited offer. ValidUntil is an ISO date (YYYY-MM-DD).
type Deal struct {
	ID           string   `json:"id"`
	Title        string   `json:"title"`
	Subtitle     string   `json:"subtitle"`
	BusinessName string   `json:"businessName"`
	ValidUntil   string   `json:"validUntil"`
	Tags         []string `json:"tags"`
}

// Event is a dated happening. DateTime is ISO local time
// (YYYY-MM-DDTHH:MM).
type Event struct {
	ID        string   `json:"id"`
	Title     string   `json:"title"`
	Location  string   `json:"location"`
	PriceText string   `json:"priceText"`
	DateTime  string   `json:"dateTime"`
	Tags      []string `json:"tags"`
}

// TagList implements tags.Filterable.
func (e Event) TagList() []string {
	return e.Tags
}

// FieldValue implements tags.Filterable.
func (e Event) FieldValue(name string) (string, bool) {
	switch name {
	case "location":
		return e.Location, true
	case "priceText":
		return e.PriceText, true
	}
	return "", false
}

// News is a short article teaser.
type News struct {
	ID          string `json:"id"`
	Title       string `json:"title"`
	Tag         string `json:"tag"`
	Snippet     string `json:"snippet"`
	PublishedAt string `json:"publishedAt,omitempty"`
}

// Collections holds one snapshot of every searchable collection.
type Collections struct {
	Businesses []Business `json:"businesses"`
	Listings   []Listing  `json:"listings"`
	Deals      []Deal     `json:"deals"`
	Events     []Event    `json:"events"`
	News       []News     `json:"news"`
}
