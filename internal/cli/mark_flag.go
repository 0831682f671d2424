package cli

import (
	"github.com/spf13/pflag"

	"github.com/alexanderramin/daoban/internal/domain"
)

// markTypeValue is a pflag.Value that only accepts known mark types.
type markTypeValue domain.MarkType

var _ pflag.Value = (*markTypeValue)(nil)

func (v *markTypeValue) String() string { return string(*v) }

func (v *markTypeValue) Set(s string) error {
	t, err := domain.ParseMarkType(s)
	if err != nil {
		return err
	}
	*v = markTypeValue(t)
	return nil
}

func (v *markTypeValue) Type() string { return "markType" }
