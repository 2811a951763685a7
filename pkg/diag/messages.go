package diag

// Core message catalog shared by every extension. Extension specific
// templates live in the extension packages and use ids from 100 up.
var (
	ExpectedAttribute = Template{ID: 10, Name: "ExpectedAttribute", Severity: Error,
		Format: "The %s element's %s attribute was not found; it is required."}
	ExpectedAttributes = Template{ID: 11, Name: "ExpectedAttributes", Severity: Error,
		Format: "The %s element requires at least one of the %s or %s attributes."}
	ExpectedAttributeOrElement = Template{ID: 12, Name: "ExpectedAttributeOrElement", Severity: Error,
		Format: "The %s element requires either the %s attribute or a %s child element."}
	ExpectedAttributeWithOtherAttribute = Template{ID: 13, Name: "ExpectedAttributeWithOtherAttribute", Severity: Error,
		Format: "The %s/@%s attribute was not found; it is required when attribute %s is specified."}
	ExpectedAttributeWithValue = Template{ID: 14, Name: "ExpectedAttributeWithValue", Severity: Error,
		Format: "The %s/@%s attribute was not found; it is required when attribute %s has a value of '%s'."}
	IllegalAttributeWithOtherAttribute = Template{ID: 15, Name: "IllegalAttributeWithOtherAttribute", Severity: Error,
		Format: "The %s/@%s attribute cannot be specified when attribute %s is present."}
	IllegalAttributeWithOtherAttributeValue = Template{ID: 16, Name: "IllegalAttributeWithOtherAttributeValue", Severity: Error,
		Format: "The %s/@%s attribute cannot be specified when attribute %s has a value of '%s'."}
	IllegalAttributeWhenNotNested = Template{ID: 17, Name: "IllegalAttributeWhenNotNested", Severity: Error,
		Format: "The %s/@%s attribute can only be specified when the %s element is nested under a %s element."}
	IllegalAttributeWhenNested = Template{ID: 18, Name: "IllegalAttributeWhenNested", Severity: Error,
		Format: "The %s/@%s attribute cannot be specified when the %s element is nested under a %s element."}
	IllegalAttributeValue = Template{ID: 19, Name: "IllegalAttributeValue", Severity: Error,
		Format: "The %s/@%s attribute's value, '%s', is not one of the legal options: %s."}
	IllegalEmptyAttributeValue = Template{ID: 20, Name: "IllegalEmptyAttributeValue", Severity: Error,
		Format: "The %s/@%s attribute's value cannot be an empty string."}
	IllegalIntegerValue = Template{ID: 21, Name: "IllegalIntegerValue", Severity: Error,
		Format: "The %s/@%s attribute's value, '%s', is not a legal integer value."}
	IntegralValueOutOfRange = Template{ID: 22, Name: "IntegralValueOutOfRange", Severity: Error,
		Format: "The %s/@%s attribute's value, '%d', is not in the range of legal values. Legal values for this attribute are from %d to %d."}
	IllegalYesNoValue = Template{ID: 23, Name: "IllegalYesNoValue", Severity: Error,
		Format: "The %s/@%s attribute's value, '%s', is not a legal yes/no value. The only legal values are 'no' and 'yes'."}
	IllegalGuidValue = Template{ID: 24, Name: "IllegalGuidValue", Severity: Error,
		Format: "The %s/@%s attribute's value, '%s', is not a legal guid value."}
	IllegalIdentifier = Template{ID: 25, Name: "IllegalIdentifier", Severity: Error,
		Format: "The %s/@%s attribute's value, '%s', is not a legal identifier. Identifiers may contain ASCII characters A-Z, a-z, digits, underscores (_), or periods (.), must begin with a letter or an underscore, and may be at most 72 characters long."}
	UnexpectedAttribute = Template{ID: 26, Name: "UnexpectedAttribute", Severity: Error,
		Format: "The %s element contains an unexpected attribute '%s'."}
	UnexpectedElement = Template{ID: 27, Name: "UnexpectedElement", Severity: Error,
		Format: "The %s element contains an unexpected child element '%s'."}
	ExpectedElement = Template{ID: 28, Name: "ExpectedElement", Severity: Error,
		Format: "A %s element must have at least one child element of type %s."}
	DuplicateSymbol = Template{ID: 29, Name: "DuplicateSymbol", Severity: Error,
		Format: "Duplicate symbol '%s:%s' found. This typically means that an Id is duplicated."}
	ElementMustBeNested = Template{ID: 30, Name: "ElementMustBeNested", Severity: Error,
		Format: "The %s element can only be used when nested under a %s element."}
	GenericReadNotAllowed = Template{ID: 31, Name: "GenericReadNotAllowed", Severity: Error,
		Format: "The %s element cannot have GenericRead as the only permission specified. Include at least one other permission."}
	IllegalAttributeValueFormat = Template{ID: 32, Name: "IllegalAttributeValueFormat", Severity: Error,
		Format: "The %s/@%s attribute's value, '%s', is not in the expected format: %s."}
	ExpectedElementText = Template{ID: 33, Name: "ExpectedElementText", Severity: Error,
		Format: "The %s element requires inner text."}
	InvalidSymbol = Template{ID: 34, Name: "InvalidSymbol", Severity: Error,
		Format: "Internal error: the %s element produced an invalid symbol: %s."}
	ExpectedParentDirectory = Template{ID: 35, Name: "ExpectedParentDirectory", Severity: Error,
		Format: "The %s element must be nested under a %s that names a directory, either with its own Directory attribute or from an enclosing directory."}

	UnknownPermission = Template{ID: 1001, Name: "UnknownPermission", Severity: Warning,
		Format: "The %s table row '%s' contains unknown permission bits 0x%08x; they were not decompiled."}
	ExpectedForeignRow = Template{ID: 1002, Name: "ExpectedForeignRow", Severity: Warning,
		Format: "The %s table row '%s' has a %s value '%s' that was not found in the %s table."}
	UnrepresentableColumnValue = Template{ID: 1003, Name: "UnrepresentableColumnValue", Severity: Warning,
		Format: "The %s table row '%s' has value '%s' in column %s which cannot be represented in authoring; it was ignored."}
	UnknownTable = Template{ID: 1004, Name: "UnknownTable", Severity: Warning,
		Format: "The %s table is not handled by any extension; its rows were not decompiled."}
	MalformedCompositeValue = Template{ID: 1005, Name: "MalformedCompositeValue", Severity: Warning,
		Format: "The %s table row '%s' has a %s value '%s' with %d segments; at most %d are allowed."}
)
