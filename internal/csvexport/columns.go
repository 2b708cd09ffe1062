package csvexport

// Columns is the marketplace bulk-upload header, in file order.
var Columns = []string{
	"Action(CC=Cp1252)", "CustomLabel", "StartPrice", "ConditionID", "Title", "Description",
	"C:Brand", "PicURL", "UPC", "Category", "PayPalAccepted", "PayPalEmailAddress",
	"PaymentProfileName", "ReturnProfileName", "ShippingProfileName", "Country", "Location",
	"StoreCategory", "Apply Profile Domestic", "Apply Profile International",
	"BuyerRequirements:LinkedPayPalAccount", "Duration", "Format", "Quantity", "Currency",
	"SiteID", "C:Country", "BestOfferEnabled", "C:Artist", "C:Material", "C:Release Title",
	"C:Genre", "C:Type", "C:Record Label", "C:Color", "C:Record Size", "C:Style", "C:Format",
	"C:Release Year", "C:Record Grading", "C:Sleeve Grading", "C:Inlay Condition",
	"C:Case Type", "C:Edition", "C:Speed", "C:Features", "C:Country/Region of Manufacture",
	"C:Language", "C:Occasion", "C:Instrument", "C:Era", "C:Producer", "C:Fidelity Level",
	"C:Composer", "C:Conductor", "C:Performer Orchestra", "C:Run Time", "C:MPN",
	"C:California Prop 65 Warning", "C:Catalog Number", "C:Number of Audio Channels",
	"C:Unit Quantity", "C:Unit Type", "C:Vinyl Matrix Number", "__keyValuePairs",
}

// Placeholder fills every cell that has no value.
const Placeholder = "NA"

var columnIndex = func() map[string]int {
	m := make(map[string]int, len(Columns))
	for i, c := range Columns {
		m[c] = i
	}
	return m
}()

// row is one data line addressed by column name.
type row []string

func newRow() row {
	r := make(row, len(Columns))
	for i := range r {
		r[i] = Placeholder
	}
	return r
}

// set stores v under column; empty values keep the placeholder. An unknown
// column is a programming error.
func (r row) set(column, v string) {
	i, ok := columnIndex[column]
	if !ok {
		panic("csvexport: unknown column " + column)
	}
	if v != "" {
		r[i] = v
	}
}
