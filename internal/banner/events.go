package banner

// Events receives lifecycle hooks around a banner's appearance. WillAppear
// always precedes DidAppear, WillDisappear always precedes DidDisappear,
// and queue advancement happens strictly after DidDisappear.
type Events interface {
	WillAppear(b *Banner)
	DidAppear(b *Banner)
	WillDisappear(b *Banner)
	DidDisappear(b *Banner)
}

// EventFuncs adapts plain functions to the Events interface. Nil fields
// are skipped.
type EventFuncs struct {
	OnWillAppear    func(b *Banner)
	OnDidAppear     func(b *Banner)
	OnWillDisappear func(b *Banner)
	OnDidDisappear  func(b *Banner)
}

func (e EventFuncs) WillAppear(b *Banner) {
	if e.OnWillAppear != nil {
		e.OnWillAppear(b)
	}
}

func (e EventFuncs) DidAppear(b *Banner) {
	if e.OnDidAppear != nil {
		e.OnDidAppear(b)
	}
}

func (e EventFuncs) WillDisappear(b *Banner) {
	if e.OnWillDisappear != nil {
		e.OnWillDisappear(b)
	}
}

func (e EventFuncs) DidDisappear(b *Banner) {
	if e.OnDidDisappear != nil {
		e.OnDidDisappear(b)
	}
}

// nopEvents is the default sink.
type nopEvents struct{}

func (nopEvents) WillAppear(*Banner)    {}
func (nopEvents) DidAppear(*Banner)     {}
func (nopEvents) WillDisappear(*Banner) {}
func (nopEvents) DidDisappear(*Banner)  {}
