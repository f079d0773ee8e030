package kwire

// Brokers provides the list of broker addresses a Client may contact.
// The list may change over time; the client reads it for every call.
type Brokers interface {
	List() []string
}

// StaticBrokers is a fixed broker list.
type StaticBrokers []string

// NewStaticBrokers returns a broker list made of addrs, in order.
func NewStaticBrokers(addrs ...string) StaticBrokers {
	return StaticBrokers(addrs)
}

func (s StaticBrokers) List() []string {
	return s
}
