package root

import (
	"github.com/Crane-Ceeshar/CCD-Suite-sub007/apps/cli/cmd/auth"
	"github.com/Crane-Ceeshar/CCD-Suite-sub007/apps/cli/cmd/bootstrap"
	"github.com/Crane-Ceeshar/CCD-Suite-sub007/apps/cli/cmd/tenant"
)

func init() {
	Root().AddCommand(auth.Command())
	Root().AddCommand(bootstrap.Command())
	Root().AddCommand(tenant.Command())
}
