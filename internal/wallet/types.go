package wallet

import "strconv"

// Typed records for the Google Wallet Objects REST schema. Business logic
// works against ClassTemplate and PassObject; the genericClass/genericObject
// wire shapes stay private to this package.

// LocalizedValue is a single language/value pair.
type LocalizedValue struct {
	Language string `json:"language"`
	Value    string `json:"value"`
}

// LocalizedString wraps a default localized value.
type LocalizedString struct {
	DefaultValue LocalizedValue `json:"defaultValue"`
}

// NewLocalizedString builds an English LocalizedString.
func NewLocalizedString(value string) LocalizedString {
	return LocalizedString{DefaultValue: LocalizedValue{Language: "en", Value: value}}
}

// TextModule is one keyed text entry on a pass object.
type TextModule struct {
	ID     string `json:"id"`
	Header string `json:"header"`
	Body   string `json:"body"`
}

// ClassTemplate describes a fixed-width three-column row layout. Column ids
// are the text-module id prefixes referenced by each row (for row i the
// referenced modules are "<column>_<i>").
type ClassTemplate struct {
	RowCount int
	Columns  [3]string
}

// PassObject is a single pass instance bound to a class.
type PassObject struct {
	ID              string
	ClassID         string
	Title           string
	Subheader       string
	Header          string
	BackgroundColor string
	LogoURI         string
	TextModules     []TextModule
	GroupingID      string
	SortIndex       int
}

type fieldReference struct {
	FieldPath string `json:"fieldPath"`
}

type fieldSelector struct {
	Fields []fieldReference `json:"fields"`
}

type rowItem struct {
	FirstValue fieldSelector `json:"firstValue"`
}

type threeItems struct {
	StartItem  rowItem `json:"startItem"`
	MiddleItem rowItem `json:"middleItem"`
	EndItem    rowItem `json:"endItem"`
}

type cardRow struct {
	ThreeItems threeItems `json:"threeItems"`
}

type cardTemplateOverride struct {
	CardRowTemplateInfos []cardRow `json:"cardRowTemplateInfos"`
}

type classTemplateInfo struct {
	CardTemplateOverride cardTemplateOverride `json:"cardTemplateOverride"`
}

type genericClass struct {
	ID                string            `json:"id"`
	ClassTemplateInfo classTemplateInfo `json:"classTemplateInfo"`
}

type sourceURI struct {
	URI string `json:"uri"`
}

type logoImage struct {
	SourceURI sourceURI `json:"sourceUri"`
}

type groupingInfo struct {
	GroupingID string `json:"groupingId"`
	SortIndex  int    `json:"sortIndex"`
}

type genericObject struct {
	ID                 string          `json:"id"`
	ClassID            string          `json:"classId"`
	GenericType        string          `json:"genericType"`
	HexBackgroundColor string          `json:"hexBackgroundColor"`
	Logo               *logoImage      `json:"logo,omitempty"`
	CardTitle          LocalizedString `json:"cardTitle"`
	Subheader          LocalizedString `json:"subheader"`
	Header             LocalizedString `json:"header"`
	TextModulesData    []TextModule    `json:"textModulesData"`
	GroupingInfo       groupingInfo    `json:"groupingInfo"`
}

// toGenericClass serializes the template into the wallet class schema,
// emitting one three-column row per item slot.
func (t ClassTemplate) toGenericClass(classID string) genericClass {
	rows := make([]cardRow, 0, t.RowCount)
	for idx := 0; idx < t.RowCount; idx++ {
		rows = append(rows, cardRow{
			ThreeItems: threeItems{
				StartItem:  rowItemFor(t.Columns[0], idx),
				MiddleItem: rowItemFor(t.Columns[1], idx),
				EndItem:    rowItemFor(t.Columns[2], idx),
			},
		})
	}

	return genericClass{
		ID: classID,
		ClassTemplateInfo: classTemplateInfo{
			CardTemplateOverride: cardTemplateOverride{CardRowTemplateInfos: rows},
		},
	}
}

func rowItemFor(column string, idx int) rowItem {
	return rowItem{
		FirstValue: fieldSelector{
			Fields: []fieldReference{
				{FieldPath: fieldPathFor(column, idx)},
			},
		},
	}
}

func fieldPathFor(column string, idx int) string {
	return "object.textModulesData['" + moduleID(column, idx) + "']"
}

func moduleID(column string, idx int) string {
	return column + "_" + strconv.Itoa(idx)
}

// toGenericObject serializes the pass object into the wallet object schema.
func (o PassObject) toGenericObject() genericObject {
	obj := genericObject{
		ID:                 o.ID,
		ClassID:            o.ClassID,
		GenericType:        "GENERIC_TYPE_UNSPECIFIED",
		HexBackgroundColor: o.BackgroundColor,
		CardTitle:          NewLocalizedString(o.Title),
		Subheader:          NewLocalizedString(o.Subheader),
		Header:             NewLocalizedString(o.Header),
		TextModulesData:    o.TextModules,
		GroupingInfo: groupingInfo{
			GroupingID: o.GroupingID,
			SortIndex:  o.SortIndex,
		},
	}
	if o.LogoURI != "" {
		obj.Logo = &logoImage{SourceURI: sourceURI{URI: o.LogoURI}}
	}
	return obj
}
