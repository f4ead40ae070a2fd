package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Product is a row in the products table.
type Product struct {
	ID                 string          `json:"id" gorm:"column:id;primaryKey"`
	Name               string          `json:"name" gorm:"column:name"`
	Description        string          `json:"description" gorm:"column:description"`
	CategoryID         *string         `json:"category_id" gorm:"column:category_id"`
	Price              decimal.Decimal `json:"price" gorm:"column:price"`
	DiscountPercentage int             `json:"discount_percentage" gorm:"column:discount_percentage"`
	Stock              int             `json:"stock" gorm:"column:stock"`
	ImageURL           string          `json:"image_url" gorm:"column:image_url"`
	CODAvailable       bool            `json:"cod_available" gorm:"column:cod_available"`
	SellerID           *string         `json:"seller_id" gorm:"column:seller_id"`
	CreatedAt          time.Time       `json:"created_at" gorm:"column:created_at"`
}

func (Product) TableName() string { return "products" }

// ProductVariant carries its own absolute price; no separate discount.
type ProductVariant struct {
	ID             string          `json:"id" gorm:"column:id;primaryKey"`
	ProductID      string          `json:"product_id" gorm:"column:product_id"`
	AttributeName  string          `json:"attribute_name" gorm:"column:attribute_name"`
	AttributeValue string          `json:"attribute_value" gorm:"column:attribute_value"`
	Price          decimal.Decimal `json:"price" gorm:"column:price"`
	Stock          int             `json:"stock" gorm:"column:stock"`
	ImageURL       string          `json:"image_url" gorm:"column:image_url"`
}

func (ProductVariant) TableName() string { return "product_variants" }

type Category struct {
	ID       string `json:"id" gorm:"column:id;primaryKey"`
	Name     string `json:"name" gorm:"column:name"`
	ImageURL string `json:"image_url" gorm:"column:image_url"`
	Position int    `json:"position" gorm:"column:position"`
}

func (Category) TableName() string { return "categories" }

type HomeBanner struct {
	ID       string `json:"id" gorm:"column:id;primaryKey"`
	ImageURL string `json:"image_url" gorm:"column:image_url"`
	LinkURL  string `json:"link_url" gorm:"column:link_url"`
	Position int    `json:"position" gorm:"column:position"`
	Active   bool   `json:"active" gorm:"column:active"`
}

func (HomeBanner) TableName() string { return "home_banners" }

type PopupOffer struct {
	ID        string    `json:"id" gorm:"column:id;primaryKey"`
	Title     string    `json:"title" gorm:"column:title"`
	ImageURL  string    `json:"image_url" gorm:"column:image_url"`
	LinkURL   string    `json:"link_url" gorm:"column:link_url"`
	Active    bool      `json:"active" gorm:"column:active"`
	CreatedAt time.Time `json:"created_at" gorm:"column:created_at"`
}

func (PopupOffer) TableName() string { return "popup_offers" }

type FAQ struct {
	ID       string `json:"id" gorm:"column:id;primaryKey"`
	Question string `json:"question" gorm:"column:question"`
	Answer   string `json:"answer" gorm:"column:answer"`
	Position int    `json:"position" gorm:"column:position"`
}

func (FAQ) TableName() string { return "faqs" }

// HomeSection is a curated product strip on the landing page.
type HomeSection struct {
	ID         string `json:"id" gorm:"column:id;primaryKey"`
	Title      string `json:"title" gorm:"column:title"`
	ProductIDs string `json:"product_ids" gorm:"column:product_ids"` // comma separated
	Position   int    `json:"position" gorm:"column:position"`
	Active     bool   `json:"active" gorm:"column:active"`
}

func (HomeSection) TableName() string { return "home_sections" }

type Seller struct {
	ID        string    `json:"id" gorm:"column:id;primaryKey"`
	AuthID    string    `json:"auth_id" gorm:"column:auth_id"`
	Name      string    `json:"name" gorm:"column:name"`
	ShopName  string    `json:"shop_name" gorm:"column:shop_name"`
	Phone     string    `json:"phone" gorm:"column:phone"`
	Approved  bool      `json:"approved" gorm:"column:approved"`
	CreatedAt time.Time `json:"created_at" gorm:"column:created_at"`
}

func (Seller) TableName() string { return "sellers" }

type DeliveryBoy struct {
	ID        string    `json:"id" gorm:"column:id;primaryKey"`
	AuthID    string    `json:"auth_id" gorm:"column:auth_id"`
	Name      string    `json:"name" gorm:"column:name"`
	Phone     string    `json:"phone" gorm:"column:phone"`
	Active    bool      `json:"active" gorm:"column:active"`
	CreatedAt time.Time `json:"created_at" gorm:"column:created_at"`
}

func (DeliveryBoy) TableName() string { return "delivery_boys" }
