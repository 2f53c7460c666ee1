package unpacker

import "fmt"

// Pack resets event and sorts the words of one window into it. Words of an
// unknown type or with a channel index outside the layout are dropped
// silently; words arriving at a full slot are dropped with an error message.
// Only Accepted, Overflow and Unclassified are set in the returned counts.
func Pack(event *Event, window []Word, directory Directory) Statistics {
	var counts Statistics

	event.Reset()
	event.Length = len(window)
	for _, word := range window {
		info := directory.Lookup(word.Address)
		switch event.add(info, NewSubEvent(word)) {
		case accepted:
			counts.Accepted++
		case overflow:
			counts.Overflow++
			errMessage := fmt.Sprintf("could not populate %v word: channel %d already holds %d sub-events (address %d, timestamp %d)",
				info.Type, info.Index, event.Capacity(), word.Address, word.Timestamp)
			logger.Error(errMessage)
		case unclassified:
			counts.Unclassified++
		}
	}
	return counts
}
