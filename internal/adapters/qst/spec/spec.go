// Package spec defines the ESTV withholding tax tariff file record layouts
// ("Quellensteuer-Tarife, Aufbau der Tarifdateien", sections 3.2 and 3.3).
// Positions are 1-based and inclusive, exactly as printed in the ESTV document.
package spec

type Field struct {
	Name        string
	Start       int
	End         int
	Description string
}

func (f Field) Len() int { return f.End - f.Start + 1 }

// Layout is the field list of one record type. Tag is the value expected in
// the RecordType field.
type Layout struct {
	Tag    string
	Fields []Field
}

// Field returns the named field. Unknown names are layout bugs and panic.
func (l Layout) Field(name string) Field {
	for _, f := range l.Fields {
		if f.Name == name {
			return f
		}
	}
	panic("qst/spec: field " + name + " not in layout " + l.Tag)
}

// Field names shared by every layout.
const (
	RecordType = "RecordType"
	Canton     = "Canton"
	Status     = "Status"
)

// Progressive tariff field names.
const (
	TransactionType = "TransactionType"
	TaxClassCode    = "TaxClassCode"
	ValidFrom       = "ValidFrom"
	IncomeFrom      = "IncomeFrom"
	TariffStep      = "TariffStep"
	Sex             = "Sex"
	Children        = "Children"
	MinimumTax      = "MinimumTax"
	TaxRate         = "TaxRate"
)

// Header field names.
const (
	SSLNumber    = "SSLNumber"
	CreationDate = "CreationDate"
	TextLine1    = "TextLine1"
	TextLine2    = "TextLine2"
)

const (
	TagHeader      = "00"
	TagProgressive = "06"
)

// Header is the Vorlaufrecord (Recordart 00).
//
//	00BE               20211125
//	header, canton Bern, created 25.11.2021
var Header = Layout{
	Tag: TagHeader,
	Fields: []Field{
		{Name: RecordType, Start: 1, End: 2, Description: "Recordart, constant '00'"},
		{Name: Canton, Start: 3, End: 4, Description: "Canton code, e.g. 'BE'"},
		{Name: SSLNumber, Start: 5, End: 19, Description: "SSL number of the issuing office"},
		{Name: CreationDate, Start: 20, End: 27, Description: "Creation date YYYYMMDD"},
		{Name: TextLine1, Start: 28, End: 67, Description: "Free text line 1"},
		{Name: TextLine2, Start: 68, End: 107, Description: "Free text line 2"},
		{Name: Status, Start: 108, End: 110, Description: "Code status"},
	},
}

// Progressive is the progressive tariff record (Recordart 06).
//
//	0601BEB2N       20220101000650100000005000 0200000000000715
//	new tariff, canton Bern, married single earner, 2 children, no church tax,
//	valid from 01.01.2022, taxable income from CHF 6'501, step CHF 50.00,
//	no minimum tax, rate 7.15%
var Progressive = Layout{
	Tag: TagProgressive,
	Fields: []Field{
		{Name: RecordType, Start: 1, End: 2, Description: "Recordart, constant '06'"},
		{Name: TransactionType, Start: 3, End: 4, Description: "Transaktionsart: 01 new, 02 change, 03 removal"},
		{Name: Canton, Start: 5, End: 6, Description: "Canton code"},
		{Name: TaxClassCode, Start: 7, End: 16, Description: "QSt-Code, left-justified, e.g. 'B2N'"},
		{Name: ValidFrom, Start: 17, End: 24, Description: "Valid from YYYYMMDD"},
		{Name: IncomeFrom, Start: 25, End: 33, Description: "Taxable income from, in Rappen"},
		{Name: TariffStep, Start: 34, End: 42, Description: "Bracket width, in Rappen"},
		{Name: Sex, Start: 43, End: 43, Description: "Code Geschlecht"},
		{Name: Children, Start: 44, End: 45, Description: "Number of children"},
		{Name: MinimumTax, Start: 46, End: 54, Description: "Minimum tax, in Rappen"},
		{Name: TaxRate, Start: 55, End: 59, Description: "Tax rate in hundredths of a percent"},
		{Name: Status, Start: 60, End: 62, Description: "Code status"},
	},
}

// Money fields carry two implied decimals, the rate four.
const (
	MoneyScale = 2
	RateScale  = 4
)
