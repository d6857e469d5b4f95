package persistence

import (
	"context"
	"database/sql"
	"fmt"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/go-sql-driver/mysql"
	"github.com/nexuscrm/fieldstudio/internal/domain/models"
	apperrors "github.com/nexuscrm/fieldstudio/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newMock(t *testing.T) (*sql.DB, sqlmock.Sqlmock) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("an error '%s' was not expected when opening a stub database connection", err)
	}
	t.Cleanup(func() { db.Close() })
	return db, mock
}

func TestDocumentRepository_Get(t *testing.T) {
	db, mock := newMock(t)
	repo := NewDocumentRepository(db)

	query := fmt.Sprintf("SELECT %s FROM %s WHERE %s = ?", documentColumns, TableMetadataDocument, ColPath)
	updated := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	path := "objects/Account/fields/name.field-meta.xml"

	mock.ExpectQuery(regexp.QuoteMeta(query)).WithArgs(path).
		WillReturnRows(sqlmock.NewRows([]string{ColPath, ColDocType, ColContent, ColRevision, ColUpdatedAt}).
			AddRow(path, models.DocTypeField, "<FieldDefinition/>", "rev-1", updated))

	doc, err := repo.Get(context.Background(), path)
	require.NoError(t, err)
	assert.Equal(t, []byte("<FieldDefinition/>"), doc.Content)
	assert.Equal(t, "rev-1", doc.Revision)
	assert.Equal(t, updated, doc.UpdatedAt)

	mock.ExpectQuery(regexp.QuoteMeta(query)).WithArgs("missing").WillReturnError(sql.ErrNoRows)
	_, err = repo.Get(context.Background(), "missing")
	assert.True(t, apperrors.IsNotFound(err))

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestDocumentRepository_ListEscapesPrefix(t *testing.T) {
	db, mock := newMock(t)
	repo := NewDocumentRepository(db)

	query := fmt.Sprintf("SELECT %s FROM %s WHERE %s LIKE ? ORDER BY %s", documentColumns, TableMetadataDocument, ColPath, ColPath)
	mock.ExpectQuery(regexp.QuoteMeta(query)).WithArgs(`objects/My\_Obj/fields/%`).
		WillReturnRows(sqlmock.NewRows([]string{ColPath, ColDocType, ColContent, ColRevision, ColUpdatedAt}).
			AddRow("objects/My_Obj/fields/a.field-meta.xml", models.DocTypeField, "<a/>", "r1", time.Now()).
			AddRow("objects/My_Obj/fields/b.field-meta.xml", models.DocTypeField, "<b/>", "r2", time.Now()))

	docs, err := repo.List(context.Background(), "objects/My_Obj/fields/")
	require.NoError(t, err)
	require.Len(t, docs, 2)
	assert.Equal(t, "objects/My_Obj/fields/b.field-meta.xml", docs[1].Path)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestDocumentRepository_CreateConflict(t *testing.T) {
	db, mock := newMock(t)
	repo := NewDocumentRepository(db)

	query := fmt.Sprintf("INSERT INTO %s (%s) VALUES (?, ?, ?, ?, ?)", TableMetadataDocument, documentColumns)
	doc := &models.Document{Path: "globalValueSets/Stage.globalValueSet-meta.xml", DocType: models.DocTypeGlobalValueSet, Content: []byte("<x/>")}

	mock.ExpectExec(regexp.QuoteMeta(query)).
		WithArgs(doc.Path, doc.DocType, "<x/>", sqlmock.AnyArg(), sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 1))
	require.NoError(t, repo.Create(context.Background(), doc))
	assert.NotEmpty(t, doc.Revision)
	first := doc.Revision

	mock.ExpectExec(regexp.QuoteMeta(query)).
		WithArgs(doc.Path, doc.DocType, "<x/>", sqlmock.AnyArg(), sqlmock.AnyArg()).
		WillReturnError(&mysql.MySQLError{Number: 1062, Message: "Duplicate entry"})
	err := repo.Create(context.Background(), doc)
	assert.True(t, apperrors.IsConflict(err))
	assert.NotEqual(t, first, doc.Revision, "every write stamps a new revision")

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestDocumentRepository_PutUpserts(t *testing.T) {
	db, mock := newMock(t)
	repo := NewDocumentRepository(db)

	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO "+TableMetadataDocument)).
		WithArgs("a.xml", models.DocTypeOther, "<a/>", sqlmock.AnyArg(), sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 2))

	err := repo.Put(context.Background(), &models.Document{Path: "a.xml", DocType: models.DocTypeOther, Content: []byte("<a/>")})
	assert.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestObjectRepository(t *testing.T) {
	db, mock := newMock(t)
	repo := NewObjectRepository(db)
	cols := []string{ColAPIName, ColLabel, ColPluralLabel}

	listQuery := fmt.Sprintf("SELECT %s, %s, %s FROM %s ORDER BY %s", ColAPIName, ColLabel, ColPluralLabel, TableObjectDefinition, ColAPIName)
	mock.ExpectQuery(regexp.QuoteMeta(listQuery)).
		WillReturnRows(sqlmock.NewRows(cols).AddRow("Account", "Account", "Accounts").AddRow("Contact", "Contact", "Contacts"))

	objs, err := repo.List(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []models.ObjectRecord{
		{APIName: "Account", Label: "Account", PluralLabel: "Accounts"},
		{APIName: "Contact", Label: "Contact", PluralLabel: "Contacts"},
	}, objs)

	getQuery := fmt.Sprintf("SELECT %s, %s, %s FROM %s WHERE %s = ?", ColAPIName, ColLabel, ColPluralLabel, TableObjectDefinition, ColAPIName)
	mock.ExpectQuery(regexp.QuoteMeta(getQuery)).WithArgs("Lead").WillReturnRows(sqlmock.NewRows(cols))
	_, err = repo.Get(context.Background(), "Lead")
	assert.True(t, apperrors.IsNotFound(err))

	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO "+TableObjectDefinition)).
		WithArgs("Lead", "Lead", "Leads").WillReturnResult(sqlmock.NewResult(0, 1))
	assert.NoError(t, repo.Upsert(context.Background(), models.ObjectRecord{APIName: "Lead", Label: "Lead", PluralLabel: "Leads"}))

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSettingRepository(t *testing.T) {
	db, mock := newMock(t)
	repo := NewSettingRepository(db)

	listQuery := fmt.Sprintf("SELECT %s FROM %s WHERE %s = ? ORDER BY %s", ColCode, TableCompanySetting, ColEnabled, ColCode)
	mock.ExpectQuery(regexp.QuoteMeta(listQuery)).WithArgs(true).
		WillReturnRows(sqlmock.NewRows([]string{ColCode}).AddRow("LookupFields").AddRow("MultiSelectLists"))

	codes, err := repo.ListEnabled(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"LookupFields", "MultiSelectLists"}, codes)

	mock.ExpectQuery(regexp.QuoteMeta(fmt.Sprintf("SELECT COUNT(*) FROM %s", TableCompanySetting))).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(3))
	n, err := repo.Count(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 3, n)

	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO "+TableCompanySetting)).
		WithArgs("LookupFields", false).WillReturnResult(sqlmock.NewResult(0, 1))
	assert.NoError(t, repo.Upsert(context.Background(), "LookupFields", false))

	assert.NoError(t, mock.ExpectationsWereMet())
}
