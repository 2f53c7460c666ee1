package unpacker

// Word is one raw hit as delivered by the digitizer.
type Word struct {
	Address    uint16
	ADCData    uint16
	CFDData    uint16
	CFDFail    bool
	FinishCode bool
	Timestamp  int64
}

// SubEvent is the part of a word kept inside an event slot.
type SubEvent struct {
	Address   uint16
	ADCData   uint16
	CFDData   uint16
	CFDFail   bool
	Timestamp int64
}

func NewSubEvent(w Word) SubEvent {
	return SubEvent{
		Address:   w.Address,
		ADCData:   w.ADCData,
		CFDData:   w.CFDData,
		CFDFail:   w.CFDFail,
		Timestamp: w.Timestamp,
	}
}
