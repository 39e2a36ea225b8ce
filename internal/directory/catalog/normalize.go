package catalog

import (
	"github.com/google/uuid"

	"github.com/vietddude/localguide/internal/core/classify"
	"github.com/vietddude/localguide/internal/core/domain"
	"github.com/vietddude/localguide/internal/infra/backend"
)

// Defaults filled in for missing business fields.
const (
	DefaultName         = "Sem nome"
	DefaultCategory     = "Não categorizado"
	DefaultNeighborhood = "Sem bairro"
	DefaultHours        = "Consultar horários"
	DefaultWhatsApp     = "5535990000000"
	PlaceholderImage    = "/placeholder.svg"
)

// Normalizer turns raw backend rows into canonical records.
type Normalizer struct {
	classifier *classify.Classifier
	newID      func() string
}

// NewNormalizer creates a normalizer. A nil classifier uses the default
// keyword table.
func NewNormalizer(c *classify.Classifier) *Normalizer {
	if c == nil {
		c = classify.Default()
	}
	return &Normalizer{
		classifier: c,
		newID:      func() string { return "temp_" + uuid.NewString() },
	}
}

// Business builds a canonical record from row. Both snake_case column names
// and camelCase seed keys are accepted; an embedded categories relation
// supplies the category when the flat columns are absent. defaultSlug is
// used when neither the row nor the keyword rules yield a slug.
func (n *Normalizer) Business(row backend.Row, defaultSlug string) domain.Business {
	name := str(row, "name")
	category := str(row, "category", "categories.name")
	description := str(row, "description")

	slug := str(row, "category_slug", "categorySlug", "categories.slug")
	if slug == "" {
		slug = n.classifier.Classify(defaultSlug, name, category, description)
	}

	images := list(row, "cover_images", "coverImages")
	if len(images) == 0 {
		images = []string{PlaceholderImage}
	}
	tagList := list(row, "tags")
	if tagList == nil {
		tagList = []string{}
	}

	isOpen, _ := boolean(row, "is_open_now", "isOpenNow")
	verified, _ := boolean(row, "is_verified", "isVerified")

	return domain.Business{
		ID:            n.id(row),
		Name:          orDefault(name, DefaultName),
		Category:      orDefault(category, DefaultCategory),
		CategorySlug:  slug,
		Neighborhood:  orDefault(str(row, "neighborhood"), DefaultNeighborhood),
		Tags:          tagList,
		Hours:         orDefault(str(row, "hours"), DefaultHours),
		Phone:         str(row, "phone"),
		WhatsApp:      orDefault(str(row, "whatsapp"), DefaultWhatsApp),
		CoverImages:   images,
		IsOpenNow:     isOpen,
		IsVerified:    verified,
		Description:   description,
		Address:       str(row, "address"),
		AverageRating: numberPtr(row, "average_rating", "averageRating", "rating"),
		ReviewCount:   intPtr(row, "review_count", "reviewCount"),
		Plan:          domain.ParsePlan(str(row, "plan")),
		Website:       str(row, "website"),
		Instagram:     str(row, "instagram"),
		Logo:          str(row, "logo"),
		Latitude:      numberPtr(row, "latitude", "lat"),
		Longitude:     numberPtr(row, "longitude", "lng"),
	}
}

func (n *Normalizer) id(row backend.Row) string {
	if id := str(row, "id"); id != "" {
		return id
	}
	return n.newID()
}

// Businesses normalizes every row.
func (n *Normalizer) Businesses(rows []backend.Row, defaultSlug string) []domain.Business {
	out := make([]domain.Business, 0, len(rows))
	for _, row := range rows {
		out = append(out, n.Business(row, defaultSlug))
	}
	return out
}

// Listing builds a classified ad from row.
func (n *Normalizer) Listing(row backend.Row) domain.Listing {
	price, _ := number(row, "price")
	rent, _ := number(row, "rent_price", "rentPrice")
	year, _ := number(row, "year")
	rating, _ := number(row, "rating")
	tagList := list(row, "tags")
	if tagList == nil {
		tagList = []string{}
	}
	return domain.Listing{
		ID:              n.id(row),
		Title:           orDefault(str(row, "title"), DefaultName),
		Neighborhood:    str(row, "neighborhood"),
		ListingType:     str(row, "listing_type", "listingType"),
		Tags:            tagList,
		Price:           price,
		RentPrice:       rent,
		Year:            int(year),
		Rating:          rating,
		PostedAt:        str(row, "posted_at", "postedAt"),
		TransactionType: str(row, "transaction_type", "transactionType"),
		PropertyType:    str(row, "property_type", "propertyType"),
		SellerType:      str(row, "seller_type", "sellerType"),
		EmploymentType:  str(row, "employment_type", "employmentType"),
		WorkModel:       str(row, "work_model", "workModel"),
		PriceLevel:      str(row, "price_level", "priceLevel"),
	}
}

// Deal builds an offer from row.
func (n *Normalizer) Deal(row backend.Row) domain.Deal {
	tagList := list(row, "tags")
	if tagList == nil {
		tagList = []string{}
	}
	return domain.Deal{
		ID:           n.id(row),
		Title:        orDefault(str(row, "title"), DefaultName),
		Subtitle:     str(row, "subtitle"),
		BusinessName: str(row, "business_name", "businessName"),
		ValidUntil:   str(row, "valid_until", "validUntil"),
		Tags:         tagList,
	}
}

// Event builds an event from row.
func (n *Normalizer) Event(row backend.Row) domain.Event {
	tagList := list(row, "tags")
	if tagList == nil {
		tagList = []string{}
	}
	return domain.Event{
		ID:        n.id(row),
		Title:     orDefault(str(row, "title"), DefaultName),
		Location:  str(row, "location"),
		PriceText: str(row, "price_text", "priceText"),
		DateTime:  str(row, "date_time", "dateTime"),
		Tags:      tagList,
	}
}

// News builds an article teaser from row.
func (n *Normalizer) News(row backend.Row) domain.News {
	return domain.News{
		ID:          n.id(row),
		Title:       orDefault(str(row, "title"), DefaultName),
		Tag:         str(row, "tag"),
		Snippet:     str(row, "snippet"),
		PublishedAt: str(row, "published_at", "publishedAt"),
	}
}
