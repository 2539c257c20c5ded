package paceopts

type tos struct {
	v int
}

// TOS sets the socket-wide IP Type-of-Service/DSCP byte at creation.
func TOS(v int) Option {
	return &tos{
		v: v,
	}
}

func (o *tos) Type() OptionType {
	return TypeTOS
}

func (o *tos) Value() interface{} {
	return o.v
}
