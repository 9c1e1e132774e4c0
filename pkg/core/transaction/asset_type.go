package transaction

// AssetType represents a NEO asset type (legacy NEO2 registered asset).
// NEO3 natively accounts for NEO and GAS as NEP-17 tokens, but
// AssetType is retained for decoding the handful of pre-NEO3 asset
// records that still live in historical chain state.
type AssetType uint8

// Valid asset types.
const (
	CreditFlag     AssetType = 0x40
	DutyFlag       AssetType = 0x80
	GoverningToken AssetType = 0x00
	UtilityToken   AssetType = 0x01
	Currency       AssetType = 0x08
	Share          AssetType = DutyFlag | 0x10
	Invoice        AssetType = DutyFlag | 0x18
	Token          AssetType = CreditFlag | 0x20
)
