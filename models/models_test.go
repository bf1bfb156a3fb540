package models

import (
	"testing"

	"landlord_docs_app_go/legal"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func setupTestDB(t *testing.T) *gorm.DB {
	db, err := gorm.Open(sqlite.Open("file:"+t.Name()+"?mode=memory&cache=shared"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&Case{}, &DocumentPack{}, &GeneratedDocument{}, &PreviewArtifact{}, &AuditLog{}))
	return db
}

func TestCaseFactsRoundTripThroughDatabase(t *testing.T) {
	db := setupTestDB(t)

	c := &Case{
		Product: legal.ProductNoticeOnly,
		Facts: legal.Facts{
			RequestedRoute: legal.RouteSection8,
			Property:       legal.Property{AddressLine1: "35 Woodhall Park Avenue", Town: "Pudsey", Postcode: "ls287hf"},
			Tenancy:        legal.Tenancy{StartDate: legal.MustParseDate("2024-06-01"), RentPence: 1500_00},
			Grounds:        []legal.GroundClaim{{Code: "8"}},
		},
	}
	require.NoError(t, db.Create(c).Error)
	assert.NotEmpty(t, c.ID)
	assert.Equal(t, CaseStatusDraft, c.Status)
	assert.Equal(t, "LS28 7HF", c.Postcode)
	assert.Equal(t, legal.RouteSection8, c.RequestedRoute)
	assert.Equal(t, legal.ProductNoticeOnly, c.Facts.Product)

	var loaded Case
	require.NoError(t, db.First(&loaded, "id = ?", c.ID).Error)
	assert.Equal(t, "2024-06-01", loaded.Facts.Tenancy.StartDate.String())
	assert.Equal(t, "35 Woodhall Park Avenue, Pudsey, ls287hf", loaded.PropertyAddress)
	require.Len(t, loaded.Facts.Grounds, 1)
	assert.Equal(t, "8", loaded.Facts.Grounds[0].Code)
}

func TestCaseMarkStepComplete(t *testing.T) {
	c := &Case{}
	c.MarkStepComplete("property")
	c.MarkStepComplete("property")
	c.MarkStepComplete("tenancy")
	assert.Equal(t, []string{"property", "tenancy"}, c.CompletedSteps)
}

func TestAuditLogIsImmutable(t *testing.T) {
	db := setupTestDB(t)

	entry := &AuditLog{ActorType: ActorSystem, ResourceType: "Case", ResourceID: "abc", Action: AuditActionCreate}
	require.NoError(t, db.Create(entry).Error)

	entry.Description = "changed"
	assert.Error(t, db.Save(entry).Error)
	assert.Error(t, db.Delete(entry).Error)
}

func TestAuditLogChanges(t *testing.T) {
	a := &AuditLog{
		OldValues: `{"status":"draft","postcode":"LS28 7HF"}`,
		NewValues: `{"status":"ready","postcode":"LS28 7HF","product":"notice_only"}`,
	}
	changes := a.Changes()
	require.Len(t, changes, 2)
	assert.Equal(t, "product", changes[0].Field)
	assert.Equal(t, "status", changes[1].Field)
	assert.Equal(t, "draft", changes[1].Old)
}
