package standard

// Nep11Payable is an alias of [Nep26].
// Deprecated: Nep11Payable will be removed in next version, use designated
// [Nep26] Standard instead.
var Nep11Payable = Nep26

// Nep17Payable is an alias of [Nep27].
// Deprecated: Nep17Payable will be removed in next version, use designated
// [Nep27] Standard instead.
var Nep17Payable = Nep27
