package domain

import (
	"encoding/json"
	"errors"
	"fmt"
)

// BusinessType selects which business-owner sub-role is active.
type BusinessType string

const (
	BusinessHotel      BusinessType = "hotel"
	BusinessRestaurant BusinessType = "restaurant"
	BusinessCarRental  BusinessType = "car_rental"
)

// ErrUnknownBusinessType is returned when untrusted input names no known business type.
var ErrUnknownBusinessType = errors.New("unknown business type")

// BusinessTypes lists the closed set of business types.
func BusinessTypes() []BusinessType {
	return []BusinessType{BusinessHotel, BusinessRestaurant, BusinessCarRental}
}

// ParseBusinessType validates a business type coming from a request or from storage.
func ParseBusinessType(s string) (BusinessType, error) {
	switch t := BusinessType(s); t {
	case BusinessHotel, BusinessRestaurant, BusinessCarRental:
		return t, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownBusinessType, s)
}

// RoutePrefix is the API path prefix for owner-scoped endpoints.
func (t BusinessType) RoutePrefix() string {
	switch t {
	case BusinessHotel:
		return "hotel-owner"
	case BusinessRestaurant:
		return "restaurant-owner"
	case BusinessCarRental:
		return "company-owner"
	}
	panic(unknownType(t))
}

// IdentityKey is the response key holding the owner object.
func (t BusinessType) IdentityKey() string {
	switch t {
	case BusinessHotel:
		return "hotel_owner"
	case BusinessRestaurant:
		return "restaurant_owner"
	case BusinessCarRental:
		return "company_owner"
	}
	panic(unknownType(t))
}

// BusinessKey is the key of the nested business object, both in responses and in route paths.
func (t BusinessType) BusinessKey() string {
	switch t {
	case BusinessHotel:
		return "hotel"
	case BusinessRestaurant:
		return "restaurant"
	case BusinessCarRental:
		return "company"
	}
	panic(unknownType(t))
}

func unknownType(t BusinessType) string {
	return fmt.Sprintf("domain: unknown business type %q", string(t))
}

// Owner is the identity of a signed-in business owner.
type Owner struct {
	ID     int64  `json:"id"`
	Name   string `json:"name"`
	Email  string `json:"email"`
	Phone  string `json:"phone,omitempty"`
	Status string `json:"status,omitempty"`
	raw    json.RawMessage
}

func (o *Owner) UnmarshalJSON(data []byte) error {
	type plain Owner
	return unmarshalKeepRaw(data, (*plain)(o), &o.raw)
}

func (o Owner) MarshalJSON() ([]byte, error) {
	type plain Owner
	return marshalRaw(o.raw, plain(o))
}

// Hotel is the business object of a hotel owner.
type Hotel struct {
	ID     int64  `json:"id"`
	Name   string `json:"name"`
	City   string `json:"city,omitempty"`
	Stars  int    `json:"stars,omitempty"`
	Status string `json:"status,omitempty"`
	raw    json.RawMessage
}

func (h *Hotel) UnmarshalJSON(data []byte) error {
	type plain Hotel
	return unmarshalKeepRaw(data, (*plain)(h), &h.raw)
}

func (h Hotel) MarshalJSON() ([]byte, error) {
	type plain Hotel
	return marshalRaw(h.raw, plain(h))
}

// Restaurant is the business object of a restaurant owner.
type Restaurant struct {
	ID      int64  `json:"id"`
	Name    string `json:"name"`
	City    string `json:"city,omitempty"`
	Cuisine string `json:"cuisine,omitempty"`
	Status  string `json:"status,omitempty"`
	raw     json.RawMessage
}

func (r *Restaurant) UnmarshalJSON(data []byte) error {
	type plain Restaurant
	return unmarshalKeepRaw(data, (*plain)(r), &r.raw)
}

func (r Restaurant) MarshalJSON() ([]byte, error) {
	type plain Restaurant
	return marshalRaw(r.raw, plain(r))
}

// Company is the business object of a car-rental owner.
type Company struct {
	ID     int64  `json:"id"`
	Name   string `json:"name"`
	City   string `json:"city,omitempty"`
	Status string `json:"status,omitempty"`
	raw    json.RawMessage
}

func (c *Company) UnmarshalJSON(data []byte) error {
	type plain Company
	return unmarshalKeepRaw(data, (*plain)(c), &c.raw)
}

func (c Company) MarshalJSON() ([]byte, error) {
	type plain Company
	return marshalRaw(c.raw, plain(c))
}

// BusinessSession is the active business-owner session. Exactly one of
// HotelSession, RestaurantSession or CarRentalSession; nil when signed out.
type BusinessSession interface {
	Type() BusinessType
	Identity() Owner
	isBusinessSession()
}

// HotelSession is a business session for a hotel owner.
type HotelSession struct {
	Owner Owner
	Hotel *Hotel
}

// RestaurantSession is a business session for a restaurant owner.
type RestaurantSession struct {
	Owner      Owner
	Restaurant *Restaurant
}

// CarRentalSession is a business session for a car-rental company owner.
type CarRentalSession struct {
	Owner   Owner
	Company *Company
}

func (HotelSession) Type() BusinessType      { return BusinessHotel }
func (RestaurantSession) Type() BusinessType { return BusinessRestaurant }
func (CarRentalSession) Type() BusinessType  { return BusinessCarRental }

func (s HotelSession) Identity() Owner      { return s.Owner }
func (s RestaurantSession) Identity() Owner { return s.Owner }
func (s CarRentalSession) Identity() Owner  { return s.Owner }

func (HotelSession) isBusinessSession()      {}
func (RestaurantSession) isBusinessSession() {}
func (CarRentalSession) isBusinessSession()  {}

// HasBusiness reports whether the owner has created their business entity.
func HasBusiness(s BusinessSession) bool {
	switch s := s.(type) {
	case HotelSession:
		return s.Hotel != nil
	case RestaurantSession:
		return s.Restaurant != nil
	case CarRentalSession:
		return s.Company != nil
	}
	return false
}

// DecodeOwnerRecord parses an owner object, with its business nested under
// t.BusinessKey(), into the session variant for t.
func DecodeOwnerRecord(t BusinessType, data []byte) (BusinessSession, error) {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(data, &fields); err != nil {
		return nil, fmt.Errorf("decode owner: %w", err)
	}
	business := fields[t.BusinessKey()]
	delete(fields, t.BusinessKey())
	ownerJSON, err := json.Marshal(fields)
	if err != nil {
		return nil, fmt.Errorf("decode owner: %w", err)
	}
	var owner Owner
	if err := json.Unmarshal(ownerJSON, &owner); err != nil {
		return nil, fmt.Errorf("decode owner: %w", err)
	}
	return WithBusiness(NewBusinessSession(t, owner), business)
}

// NewBusinessSession returns the variant for t with no business attached.
func NewBusinessSession(t BusinessType, owner Owner) BusinessSession {
	switch t {
	case BusinessHotel:
		return HotelSession{Owner: owner}
	case BusinessRestaurant:
		return RestaurantSession{Owner: owner}
	case BusinessCarRental:
		return CarRentalSession{Owner: owner}
	}
	panic(unknownType(t))
}

// WithBusiness returns a copy of s whose business object is decoded from data.
// An empty or null payload leaves the business unset. Owner fields are kept.
func WithBusiness(s BusinessSession, data json.RawMessage) (BusinessSession, error) {
	if isNull(data) {
		return s, nil
	}
	switch s := s.(type) {
	case HotelSession:
		var h Hotel
		if err := json.Unmarshal(data, &h); err != nil {
			return nil, fmt.Errorf("decode hotel: %w", err)
		}
		s.Hotel = &h
		return s, nil
	case RestaurantSession:
		var r Restaurant
		if err := json.Unmarshal(data, &r); err != nil {
			return nil, fmt.Errorf("decode restaurant: %w", err)
		}
		s.Restaurant = &r
		return s, nil
	case CarRentalSession:
		var c Company
		if err := json.Unmarshal(data, &c); err != nil {
			return nil, fmt.Errorf("decode company: %w", err)
		}
		s.Company = &c
		return s, nil
	}
	return nil, fmt.Errorf("unsupported business session %T", s)
}

// WithOwner returns a copy of s with its owner replaced and its business kept.
func WithOwner(s BusinessSession, owner Owner) BusinessSession {
	switch s := s.(type) {
	case HotelSession:
		s.Owner = owner
		return s
	case RestaurantSession:
		s.Owner = owner
		return s
	case CarRentalSession:
		s.Owner = owner
		return s
	}
	return s
}

// EncodeOwnerRecord is the inverse of DecodeOwnerRecord.
func EncodeOwnerRecord(s BusinessSession) ([]byte, error) {
	ownerJSON, err := json.Marshal(s.Identity())
	if err != nil {
		return nil, err
	}
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(ownerJSON, &fields); err != nil {
		return nil, err
	}

	delete(fields, s.Type().BusinessKey())

	var business any
	switch s := s.(type) {
	case HotelSession:
		if s.Hotel != nil {
			business = s.Hotel
		}
	case RestaurantSession:
		if s.Restaurant != nil {
			business = s.Restaurant
		}
	case CarRentalSession:
		if s.Company != nil {
			business = s.Company
		}
	}
	if business != nil {
		nested, err := json.Marshal(business)
		if err != nil {
			return nil, err
		}
		fields[s.Type().BusinessKey()] = nested
	}
	return json.Marshal(fields)
}

func isNull(data json.RawMessage) bool {
	return len(data) == 0 || string(data) == "null"
}
