package model

import "time"

// Item is a lost or found report.
type Item struct {
	ID               int64     `db:"id" json:"id"`
	ItemName         string    `db:"item_name" json:"itemName"`
	Category         string    `db:"category" json:"category"`
	Brand            string    `db:"brand" json:"brand"`
	PrimaryColor     string    `db:"primary_color" json:"primaryColor"`
	SecondaryColor   string    `db:"secondary_color" json:"secondaryColor"`
	DateLostOrFound  time.Time `db:"date_lost_or_found" json:"dateLostorFound"`
	TimeLostOrFound  string    `db:"time_lost_or_found" json:"timeLostorFound"`
	Image            string    `db:"image" json:"image"`
	AdditionalInfo   string    `db:"additional_info" json:"additionalInfo"`
	WhereLostOrFound string    `db:"where_lost_or_found" json:"whereLostorFound"`
	Location         string    `db:"location" json:"location"`
	Subcity          string    `db:"subcity" json:"subcity"`
	Zipcode          string    `db:"zipcode" json:"zipcode"`
	ContactFirstName string    `db:"contact_first_name" json:"contactFirstName"`
	ContactLastName  string    `db:"contact_last_name" json:"contactLastName"`
	ContactPhone     string    `db:"contact_phone" json:"contactPhone"`
	ContactEmail     string    `db:"contact_email" json:"contactEmail"`
	Status           string    `db:"status" json:"status"`
	DateReported     time.Time `db:"date_reported" json:"dateReported"`
	UserID           int64     `db:"user_id" json:"userId"`
}

// Item statuses.
const (
	ItemStatusLost     = "lost"
	ItemStatusFound    = "found"
	ItemStatusReturned = "returned"
)

// ValidItemStatus reports whether status is one of the item statuses.
func ValidItemStatus(status string) bool {
	switch status {
	case ItemStatusLost, ItemStatusFound, ItemStatusReturned:
		return true
	}
	return false
}

// ItemInput is an item report as submitted by a client, before validation.
// Multipart forms decode through the schema tags, JSON bodies through the
// json tags. The image reference is never taken from a client; it is only
// set when a photo is uploaded.
type ItemInput struct {
	ItemName         string `json:"itemName" schema:"itemName"`
	Category         string `json:"category" schema:"category"`
	Brand            string `json:"brand" schema:"brand"`
	PrimaryColor     string `json:"primaryColor" schema:"primaryColor"`
	SecondaryColor   string `json:"secondaryColor" schema:"secondaryColor"`
	DateLostOrFound  string `json:"dateLostorFound" schema:"dateLostorFound"`
	TimeLostOrFound  string `json:"timeLostorFound" schema:"timeLostorFound"`
	AdditionalInfo   string `json:"additionalInfo" schema:"additionalInfo"`
	WhereLostOrFound string `json:"whereLostorFound" schema:"whereLostorFound"`
	Subcity          string `json:"subcity" schema:"subcity"`
	Location         string `json:"location" schema:"location"`
	Zipcode          string `json:"zipcode" schema:"zipcode"`
	ContactFirstName string `json:"contactFirstName" schema:"contactFirstName"`
	ContactLastName  string `json:"contactLastName" schema:"contactLastName"`
	ContactPhone     string `json:"contactPhone" schema:"contactPhone"`
	ContactEmail     string `json:"contactEmail" schema:"contactEmail"`
	Status           string `json:"status" schema:"status"`
}

// ItemPatch is a partial item update. Nil fields are left unchanged.
type ItemPatch struct {
	ItemName         *string `json:"itemName"`
	Category         *string `json:"category"`
	Brand            *string `json:"brand"`
	PrimaryColor     *string `json:"primaryColor"`
	SecondaryColor   *string `json:"secondaryColor"`
	DateLostOrFound  *string `json:"dateLostorFound"`
	TimeLostOrFound  *string `json:"timeLostorFound"`
	AdditionalInfo   *string `json:"additionalInfo"`
	WhereLostOrFound *string `json:"whereLostorFound"`
	Subcity          *string `json:"subcity"`
	Location         *string `json:"location"`
	Zipcode          *string `json:"zipcode"`
	ContactFirstName *string `json:"contactFirstName"`
	ContactLastName  *string `json:"contactLastName"`
	ContactPhone     *string `json:"contactPhone"`
	ContactEmail     *string `json:"contactEmail"`
	Status           *string `json:"status"`
}

// Input returns the item's fields in their submitted form.
func (it *Item) Input() ItemInput {
	return ItemInput{
		ItemName:         it.ItemName,
		Category:         it.Category,
		Brand:            it.Brand,
		PrimaryColor:     it.PrimaryColor,
		SecondaryColor:   it.SecondaryColor,
		DateLostOrFound:  it.DateLostOrFound.UTC().Format(time.RFC3339Nano),
		TimeLostOrFound:  it.TimeLostOrFound,
		AdditionalInfo:   it.AdditionalInfo,
		WhereLostOrFound: it.WhereLostOrFound,
		Subcity:          it.Subcity,
		Location:         it.Location,
		Zipcode:          it.Zipcode,
		ContactFirstName: it.ContactFirstName,
		ContactLastName:  it.ContactLastName,
		ContactPhone:     it.ContactPhone,
		ContactEmail:     it.ContactEmail,
		Status:           it.Status,
	}
}

// Apply overlays the set fields of p onto in.
func (p *ItemPatch) Apply(in ItemInput) ItemInput {
	set := func(dst *string, v *string) {
		if v != nil {
			*dst = *v
		}
	}
	set(&in.ItemName, p.ItemName)
	set(&in.Category, p.Category)
	set(&in.Brand, p.Brand)
	set(&in.PrimaryColor, p.PrimaryColor)
	set(&in.SecondaryColor, p.SecondaryColor)
	set(&in.DateLostOrFound, p.DateLostOrFound)
	set(&in.TimeLostOrFound, p.TimeLostOrFound)
	set(&in.AdditionalInfo, p.AdditionalInfo)
	set(&in.WhereLostOrFound, p.WhereLostOrFound)
	set(&in.Subcity, p.Subcity)
	set(&in.Location, p.Location)
	set(&in.Zipcode, p.Zipcode)
	set(&in.ContactFirstName, p.ContactFirstName)
	set(&in.ContactLastName, p.ContactLastName)
	set(&in.ContactPhone, p.ContactPhone)
	set(&in.ContactEmail, p.ContactEmail)
	set(&in.Status, p.Status)
	return in
}
