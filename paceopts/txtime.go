package paceopts

// TxTimeConfig carries the SO_TXTIME socket configuration. DeadlineMode
// asks the qdisc to treat transmit timestamps as deadlines rather than
// exact release times; ReportErrors asks the kernel to queue scheduling
// failures on the socket error queue.
type TxTimeConfig struct {
	DeadlineMode bool
	ReportErrors bool
}

type txTime struct {
	v TxTimeConfig
}

// TxTime enables kernel transmit-time scheduling on the socket. This is
// the capability precondition for scheduled sends; it requires an etf or
// fq qdisc on the egress interface.
func TxTime(v TxTimeConfig) Option {
	return &txTime{
		v: v,
	}
}

func (o *txTime) Type() OptionType {
	return TypeTxTime
}

func (o *txTime) Value() interface{} {
	return o.v
}
