package match

import (
	"reflect"
	"testing"
)

func TestBuildRequestDropsEmptyTokens(t *testing.T) {
	form := Form{
		FieldOfStudy:       "Computer Science",
		DegreeLevel:        "PG",
		Interests:          "AI, ML, ",
		LocationPreference: NotImportant,
		FeePreference:      NotImportant,
	}

	req := BuildRequest(form)

	if !reflect.DeepEqual(req.Interests, []string{"AI", "ML"}) {
		t.Fatalf("unexpected interests: %v", req.Interests)
	}
	if len(req.PreferredLocations) != 0 {
		t.Fatalf("expected empty locations, got %v", req.PreferredLocations)
	}
	if req.MaxFees != nil {
		t.Fatalf("expected nil max fees, got %d", *req.MaxFees)
	}
	if req.FieldOfStudy != "Computer Science" || req.DegreeLevel != "PG" {
		t.Fatalf("pass-through fields changed: %+v", req)
	}
}

func TestBuildRequestSpecificLocations(t *testing.T) {
	form := Form{
		LocationPreference: LocationSpecific,
		PreferredLocations: " London ,Scotland,, Manchester",
	}

	req := BuildRequest(form)

	want := []string{"London", "Scotland", "Manchester"}
	if !reflect.DeepEqual(req.PreferredLocations, want) {
		t.Fatalf("unexpected locations: %v", req.PreferredLocations)
	}
}

func TestBuildRequestLocationsIgnoredWithoutSpecific(t *testing.T) {
	form := Form{
		LocationPreference: NotImportant,
		PreferredLocations: "London, Manchester",
	}

	if req := BuildRequest(form); len(req.PreferredLocations) != 0 {
		t.Fatalf("locations leaked: %v", req.PreferredLocations)
	}
}

func TestBuildRequestMaxFees(t *testing.T) {
	form := Form{FeePreference: FeeMaxLimit, MaxFees: "25000"}
	req := BuildRequest(form)
	if req.MaxFees == nil || *req.MaxFees != 25000 {
		t.Fatalf("unexpected max fees: %v", req.MaxFees)
	}

	form.MaxFees = ""
	if req := BuildRequest(form); req.MaxFees != nil {
		t.Fatalf("empty fee field should map to nil, got %d", *req.MaxFees)
	}

	form.MaxFees = "not a number"
	if req := BuildRequest(form); req.MaxFees != nil {
		t.Fatalf("unparseable fee should map to nil, got %d", *req.MaxFees)
	}

	form = Form{FeePreference: NotImportant, MaxFees: "25000"}
	if req := BuildRequest(form); req.MaxFees != nil {
		t.Fatalf("fees should be ignored when unimportant, got %d", *req.MaxFees)
	}
}
