package sqlassets

import _ "embed"

//go:embed schema/core.sql
var CoreSQL string

//go:embed schema/modules.sql
var ModulesSQL string

//go:embed schema/policies.sql
var PoliciesSQL string
