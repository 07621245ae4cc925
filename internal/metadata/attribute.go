package metadata

// Attribute type names as the Web API reports them.
const (
	TypeString   = "String"
	TypeMemo     = "Memo"
	TypeInteger  = "Integer"
	TypeDouble   = "Double"
	TypeMoney    = "Money"
	TypeBoolean  = "Boolean"
	TypeDateTime = "DateTime"
	TypePicklist = "Picklist"
	TypeLookup   = "Lookup"
	TypeCustomer = "Customer"
)

// Format values that change synthesis for String/DateTime attributes.
const (
	FormatEmail    = "Email"
	FormatPhone    = "Phone"
	FormatDateOnly = "DateOnly"
)

const RequiredLevelApplication = "ApplicationRequired"

// Attribute is one entity attribute as returned by
// EntityDefinitions(...)/Attributes. Snapshot per request, never cached.
type Attribute struct {
	LogicalName       string        `json:"LogicalName"`
	AttributeType     string        `json:"AttributeType"`
	IsValidForCreate  bool          `json:"IsValidForCreate"`
	IsRequiredForForm bool          `json:"IsRequiredForForm"`
	RequiredLevel     RequiredLevel `json:"RequiredLevel"`
	Format            string        `json:"Format"`
	FormatName        OptionValue   `json:"FormatName"`
	MaxLength         int           `json:"MaxLength"`
	Targets           []string      `json:"Targets"`
}

type RequiredLevel struct {
	Value string `json:"Value"`
}

// OptionValue wraps the API's {"Value": ...} envelope used for format names.
type OptionValue struct {
	Value string `json:"Value"`
}

// FormatValue returns the attribute's format, falling back to FormatName
// when the flat Format property is absent on the metadata row.
func (a *Attribute) FormatValue() string {
	if a.Format != "" {
		return a.Format
	}
	return a.FormatName.Value
}

// IsApplicationRequired reports whether the attribute must be populated on create.
// Predicate per the entity-attribute-metadata documentation.
func (a *Attribute) IsApplicationRequired() bool {
	return a.RequiredLevel.Value == RequiredLevelApplication &&
		a.IsRequiredForForm &&
		a.IsValidForCreate
}

// IsReference reports whether the attribute binds to rows of another entity.
func (a *Attribute) IsReference() bool {
	return a.AttributeType == TypeLookup || a.AttributeType == TypeCustomer
}

// Option is one picklist entry. The underlying Value is what gets written;
// the label is only ever shown to humans.
type Option struct {
	Value int         `json:"Value"`
	Label OptionLabel `json:"Label"`
}

type OptionLabel struct {
	UserLocalizedLabel struct {
		Label string `json:"Label"`
	} `json:"UserLocalizedLabel"`
}
