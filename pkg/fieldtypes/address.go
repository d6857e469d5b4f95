package fieldtypes

// AddressColumns derives the five storage columns of an address field from its apiCode.
// The names are fixed once the field exists.
func AddressColumns(apiCode string) AddressAttributes {
	if apiCode == "" {
		return AddressAttributes{}
	}
	return AddressAttributes{
		StreetAddressColumn: apiCode + "StreetAddress",
		CityColumn:          apiCode + "City",
		StateProvinceColumn: apiCode + "StateProvince",
		ZipCodeColumn:       apiCode + "ZipCode",
		CountryColumn:       apiCode + "Country",
	}
}

// Columns returns the column names in display order.
func (a AddressAttributes) Columns() []string {
	return []string{
		a.StreetAddressColumn,
		a.CityColumn,
		a.StateProvinceColumn,
		a.ZipCodeColumn,
		a.CountryColumn,
	}
}
