package service

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/gaithtours/margin-engine/internal/models"
	"github.com/gaithtours/margin-engine/internal/repository"
)

func TestLoadCatalogFileAndImport(t *testing.T) {
	db := openMarginTestDB(t, "location_import")
	path := filepath.Join(t.TempDir(), "catalog.yml")
	content := `countries:
  - code: sa
    name: Saudi  Arabia
    cities: [Riyadh, Jeddah, " "]
  - code: AE
    name: United Arab Emirates
    cities:
      - Dubai
`
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("write catalog failed: %v", err)
	}
	catalog, err := LoadCatalogFile(path)
	if err != nil {
		t.Fatalf("load catalog failed: %v", err)
	}
	svc := NewLocationService(db, repository.NewLocationRepository(db))
	ctx := context.Background()

	summary, err := svc.ImportCatalog(ctx, catalog)
	if err != nil {
		t.Fatalf("import catalog failed: %v", err)
	}
	if summary.Countries != 2 || summary.Cities != 3 {
		t.Fatalf("unexpected summary: %+v", summary)
	}
	if _, err := svc.ImportCatalog(ctx, catalog); err != nil {
		t.Fatalf("re-import catalog failed: %v", err)
	}

	var countries, cities int64
	db.Model(&models.Country{}).Count(&countries)
	db.Model(&models.City{}).Count(&cities)
	if countries != 2 || cities != 3 {
		t.Fatalf("re-import should be idempotent, got countries=%d cities=%d", countries, cities)
	}

	name, err := svc.CanonicalCountry(ctx, "SA")
	if err != nil || name != "Saudi Arabia" {
		t.Fatalf("country name should be whitespace-normalized, got %q err=%v", name, err)
	}
}

func TestLoadCatalogFileErrors(t *testing.T) {
	if _, err := LoadCatalogFile(filepath.Join(t.TempDir(), "missing.yml")); err == nil {
		t.Fatalf("missing file should fail")
	}
	path := filepath.Join(t.TempDir(), "broken.yml")
	if err := os.WriteFile(path, []byte("countries: [code: SA"), 0o600); err != nil {
		t.Fatalf("write catalog failed: %v", err)
	}
	if _, err := LoadCatalogFile(path); err == nil {
		t.Fatalf("malformed yaml should fail")
	}
}

func TestImportCatalogRejectsBadEntries(t *testing.T) {
	db := openMarginTestDB(t, "location_import_bad")
	svc := NewLocationService(db, repository.NewLocationRepository(db))
	_, err := svc.ImportCatalog(context.Background(), &Catalog{Countries: []CatalogCountry{
		{Code: "SA", Name: "Saudi Arabia"},
		{Code: "ARE", Name: "United Arab Emirates"},
	}})
	if err == nil {
		t.Fatalf("three-letter code should be rejected")
	}
	var count int64
	db.Model(&models.Country{}).Count(&count)
	if count != 0 {
		t.Fatalf("rejected catalog should not write anything, got %d", count)
	}
}

func TestResolveCountries(t *testing.T) {
	db := openMarginTestDB(t, "location_countries")
	svc := importTestCatalog(t, db)
	ctx := context.Background()

	all, err := svc.ResolveCountries(ctx, "")
	if err != nil {
		t.Fatalf("resolve countries failed: %v", err)
	}
	names := make([]string, 0, len(all))
	for _, option := range all {
		names = append(names, option.Name)
	}
	if got := strings.Join(names, ","); got != "Egypt,Saudi Arabia,United Arab Emirates" {
		t.Fatalf("inactive countries should be hidden and result ordered by name, got %s", got)
	}

	arab, err := svc.ResolveCountries(ctx, "ARAB")
	if err != nil {
		t.Fatalf("resolve countries failed: %v", err)
	}
	if len(arab) != 2 || arab[0].Code != "SA" || arab[1].Code != "AE" {
		t.Fatalf("unexpected search result: %+v", arab)
	}

	byCode, err := svc.ResolveCountries(ctx, "eg")
	if err != nil {
		t.Fatalf("resolve countries failed: %v", err)
	}
	if len(byCode) != 1 || byCode[0].Name != "Egypt" {
		t.Fatalf("search should match codes, got %+v", byCode)
	}
}

func TestResolveCities(t *testing.T) {
	db := openMarginTestDB(t, "location_cities")
	svc := importTestCatalog(t, db)
	ctx := context.Background()

	saudi, err := svc.ResolveCities(ctx, []string{"sa"})
	if err != nil {
		t.Fatalf("resolve cities failed: %v", err)
	}
	if got := strings.Join(saudi, ","); got != "Jeddah,Makkah,Riyadh" {
		t.Fatalf("unexpected saudi cities: %s", got)
	}

	mixed, err := svc.ResolveCities(ctx, []string{"Saudi Arabia", "AE"})
	if err != nil {
		t.Fatalf("resolve cities failed: %v", err)
	}
	if len(mixed) != 5 {
		t.Fatalf("names and codes should both resolve, got %v", mixed)
	}

	all, err := svc.ResolveCities(ctx, nil)
	if err != nil {
		t.Fatalf("resolve cities failed: %v", err)
	}
	for _, city := range all {
		if city == "Doha" {
			t.Fatalf("cities of inactive countries should be hidden")
		}
	}
	if len(all) != 6 {
		t.Fatalf("expected 6 active cities, got %v", all)
	}

	unknown, err := svc.ResolveCities(ctx, []string{"Narnia"})
	if err != nil {
		t.Fatalf("resolve cities failed: %v", err)
	}
	if len(unknown) != 0 {
		t.Fatalf("unknown country should yield no cities, got %v", unknown)
	}
}

func TestCanonicalLocations(t *testing.T) {
	db := openMarginTestDB(t, "location_canonical")
	svc := importTestCatalog(t, db)
	ctx := context.Background()

	if name, err := svc.CanonicalCountry(ctx, " united arab emirates "); err != nil || name != "United Arab Emirates" {
		t.Fatalf("unexpected canonical country %q err=%v", name, err)
	}
	if _, err := svc.CanonicalCountry(ctx, "Narnia"); !errors.Is(err, ErrLocationNotFound) {
		t.Fatalf("expected location not found, got %v", err)
	}
	if _, err := svc.CanonicalCountry(ctx, "QA"); !errors.Is(err, ErrLocationNotFound) {
		t.Fatalf("inactive country should not resolve, got %v", err)
	}

	if name, err := svc.CanonicalCity(ctx, []string{"Saudi Arabia"}, "RIYADH"); err != nil || name != "Riyadh" {
		t.Fatalf("unexpected canonical city %q err=%v", name, err)
	}
	if name, err := svc.CanonicalCity(ctx, nil, "dubai"); err != nil || name != "Dubai" {
		t.Fatalf("city without country scope should resolve, got %q err=%v", name, err)
	}
	if _, err := svc.CanonicalCity(ctx, []string{"United Arab Emirates"}, "Riyadh"); !errors.Is(err, ErrLocationNotFound) {
		t.Fatalf("city outside listed countries should not resolve, got %v", err)
	}
}
