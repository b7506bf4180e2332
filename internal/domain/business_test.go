package domain

import (
	"encoding/json"
	"errors"
	"testing"
)

func TestBusinessTypeMappingsAreTotal(t *testing.T) {
	want := map[BusinessType][3]string{
		BusinessHotel:      {"hotel-owner", "hotel_owner", "hotel"},
		BusinessRestaurant: {"restaurant-owner", "restaurant_owner", "restaurant"},
		BusinessCarRental:  {"company-owner", "company_owner", "company"},
	}
	for _, bt := range BusinessTypes() {
		got := [3]string{bt.RoutePrefix(), bt.IdentityKey(), bt.BusinessKey()}
		for i, v := range got {
			if v == "" {
				t.Errorf("%s: mapping %d is empty", bt, i)
			}
		}
		if got != want[bt] {
			t.Errorf("%s: expected %v, got %v", bt, want[bt], got)
		}
	}
}

func TestBusinessTypeMappingPanicsOnUnknownTag(t *testing.T) {
	defer func() {
		if r := recover(); r == nil {
			t.Errorf("expected panic for unknown business type")
		}
	}()
	_ = BusinessType("boat").RoutePrefix()
}

func TestParseBusinessType(t *testing.T) {
	for _, bt := range BusinessTypes() {
		got, err := ParseBusinessType(string(bt))
		if err != nil || got != bt {
			t.Errorf("expected %s to parse, got %q %v", bt, got, err)
		}
	}
	if _, err := ParseBusinessType("Hotel"); !errors.Is(err, ErrUnknownBusinessType) {
		t.Errorf("expected ErrUnknownBusinessType, got %v", err)
	}
}

func TestDecodeOwnerRecordSelectsVariant(t *testing.T) {
	payload := []byte(`{"id":7,"name":"Sara","email":"sara@example.com","company":{"id":3,"name":"Atlas Cars","fleet":12}}`)

	sess, err := DecodeOwnerRecord(BusinessCarRental, payload)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	rental, ok := sess.(CarRentalSession)
	if !ok {
		t.Fatalf("expected CarRentalSession, got %T", sess)
	}
	if rental.Owner.Name != "Sara" || rental.Company == nil || rental.Company.Name != "Atlas Cars" {
		t.Errorf("unexpected session %+v", rental)
	}
	if _, isHotel := sess.(HotelSession); isHotel {
		t.Error("car rental session must not be a hotel session")
	}
}

func TestDecodeOwnerRecordWithoutBusiness(t *testing.T) {
	sess, err := DecodeOwnerRecord(BusinessHotel, []byte(`{"id":1,"name":"Omar","email":"o@example.com","hotel":null}`))
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if HasBusiness(sess) {
		t.Error("expected no business for null hotel")
	}
}

func TestEncodeOwnerRecordKeepsUnknownBusinessFields(t *testing.T) {
	payload := []byte(`{"id":2,"name":"Lina","email":"l@example.com","restaurant":{"id":9,"name":"Dar","seats":40}}`)
	sess, err := DecodeOwnerRecord(BusinessRestaurant, payload)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}

	encoded, err := EncodeOwnerRecord(sess)
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	var fields map[string]any
	if err := json.Unmarshal(encoded, &fields); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	restaurant, ok := fields["restaurant"].(map[string]any)
	if !ok {
		t.Fatalf("expected nested restaurant, got %v", fields)
	}
	if restaurant["seats"] != float64(40) {
		t.Errorf("expected unmodelled field to pass through, got %v", restaurant)
	}
	if fields["name"] != "Lina" {
		t.Errorf("expected owner name kept, got %v", fields["name"])
	}
}

func TestWithOwnerKeepsBusiness(t *testing.T) {
	sess := HotelSession{Owner: Owner{ID: 1, Name: "Old"}, Hotel: &Hotel{ID: 5, Name: "Riad"}}

	updated := WithOwner(sess, Owner{ID: 1, Name: "New"})

	hs := updated.(HotelSession)
	if hs.Owner.Name != "New" || hs.Hotel == nil || hs.Hotel.ID != 5 {
		t.Errorf("unexpected session %+v", hs)
	}
}

func TestStorageKeysAll(t *testing.T) {
	if got := len(BusinessKeys.All()); got != 3 {
		t.Errorf("expected 3 business keys, got %d", got)
	}
	if got := len(ConsumerKeys.All()); got != 2 {
		t.Errorf("expected 2 consumer keys, got %d", got)
	}
}

func TestOwnerRecordKeepsUnmodelledOwnerFields(t *testing.T) {
	payload := []byte(`{"id":1,"name":"Omar","email":"o@example.com","iban":"MA64","hotel":{"id":5,"name":"Riad"}}`)
	sess, err := DecodeOwnerRecord(BusinessHotel, payload)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}

	ownerJSON, err := json.Marshal(sess.Identity())
	if err != nil {
		t.Fatalf("encode owner: %v", err)
	}
	var owner map[string]any
	_ = json.Unmarshal(ownerJSON, &owner)
	if owner["iban"] != "MA64" {
		t.Errorf("expected unmodelled owner field, got %v", owner)
	}
	if _, nested := owner["hotel"]; nested {
		t.Error("expected the business to live only on the session, not inside the owner")
	}

	encoded, err := EncodeOwnerRecord(WithOwner(sess, sess.Identity()))
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	var record map[string]any
	_ = json.Unmarshal(encoded, &record)
	if record["iban"] != "MA64" {
		t.Errorf("expected owner field persisted, got %v", record)
	}
	if hotel, _ := record["hotel"].(map[string]any); hotel["name"] != "Riad" {
		t.Errorf("expected nested hotel persisted, got %v", record)
	}
}
