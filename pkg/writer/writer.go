package writer

import (
	"errors"
	"fmt"

	hdf5 "github.com/jmbenlloch/go-hdf5"
	unpacker "github.com/next-exp/xiareader_go/pkg"
)

// Writer stores packed events in an HDF5 file:
//
//	Run/events        one row per event
//	Run/runInfo       run number
//	Run/multiplicity  accepted words per channel type, one row per event
//	Hits/<type>       one row per accepted sub-event
//	Channels/mapping  address map used for the run
//
// Rows are appended in call order; callers packing in parallel restore
// window order before calling WriteEvent.
type Writer struct {
	File              *hdf5.File
	Filename          string
	CompressionLevel  int
	RunGroup          *hdf5.Group
	HitsGroup         *hdf5.Group
	ChannelsGroup     *hdf5.Group
	EventTable        *hdf5.Dataset
	RunInfoTable      *hdf5.Dataset
	MultiplicityArray *hdf5.Dataset
	MappingTable      *hdf5.Dataset
	HitTables         map[unpacker.ChannelType]*hdf5.Dataset
	HitCounters       map[unpacker.ChannelType]int
	EvtCounter        int
}

// EventHeader locates a packed event in its word source.
type EventHeader struct {
	Number    int
	Start     int
	Timestamp int64
}

func NewWriter(filename string, compressionLevel int) (*Writer, error) {
	var err error
	writer := &Writer{
		Filename:         filename,
		CompressionLevel: compressionLevel,
		HitTables:        make(map[unpacker.ChannelType]*hdf5.Dataset),
		HitCounters:      make(map[unpacker.ChannelType]int),
	}
	writer.File, err = openFile(filename)
	if err != nil {
		return nil, err
	}

	if err := writer.createLayout(); err != nil {
		writer.Close()
		return nil, fmt.Errorf("error creating %s: %w", filename, err)
	}
	return writer, nil
}

func (w *Writer) createLayout() error {
	var err error
	if w.RunGroup, err = createGroup(w.File, "Run"); err != nil {
		return err
	}
	if w.HitsGroup, err = createGroup(w.File, "Hits"); err != nil {
		return err
	}
	if w.ChannelsGroup, err = createGroup(w.File, "Channels"); err != nil {
		return err
	}
	if w.EventTable, err = createTable(w.RunGroup, "events", EventDataHDF5{}, w.CompressionLevel); err != nil {
		return err
	}
	if w.RunInfoTable, err = createTable(w.RunGroup, "runInfo", RunInfoHDF5{}, w.CompressionLevel); err != nil {
		return err
	}
	if w.MultiplicityArray, err = create2dArray(w.RunGroup, "multiplicity", len(unpacker.ChannelTypes), w.CompressionLevel); err != nil {
		return err
	}
	if w.MappingTable, err = createTable(w.ChannelsGroup, "mapping", ChannelMappingHDF5{}, w.CompressionLevel); err != nil {
		return err
	}
	for _, t := range unpacker.ChannelTypes {
		table, err := createTable(w.HitsGroup, t.String(), HitHDF5{}, w.CompressionLevel)
		if err != nil {
			return err
		}
		w.HitTables[t] = table
	}
	return nil
}

func (w *Writer) WriteRunInfo(runNumber int) error {
	return writeEntryToTable(w.RunInfoTable, RunInfoHDF5{run_number: int32(runNumber)}, 0)
}

func (w *Writer) WriteChannels(channels unpacker.ChannelMap) error {
	entries := channels.Entries()
	rows := make([]ChannelMappingHDF5, len(entries))
	for i, entry := range entries {
		rows[i] = ChannelMappingHDF5{
			address:      int32(entry.Address),
			channel_type: int32(entry.Type),
			channel:      int32(entry.Index),
		}
	}
	return writeArrayToTable(w.MappingTable, &rows, 0)
}

func (w *Writer) WriteEvent(header EventHeader, event *unpacker.Event) error {
	evtData := EventDataHDF5{
		evt_number: int32(header.Number),
		start:      int64(header.Start),
		length:     int32(event.Length),
		timestamp:  header.Timestamp,
	}
	if err := writeEntryToTable(w.EventTable, evtData, w.EvtCounter); err != nil {
		return fmt.Errorf("error writing event %d: %w", header.Number, err)
	}

	multiplicity := make([]int32, len(unpacker.ChannelTypes))
	for i, t := range unpacker.ChannelTypes {
		multiplicity[i] = int32(event.Total(t))
	}
	if err := write2dArray(w.MultiplicityArray, &multiplicity, w.EvtCounter, len(multiplicity)); err != nil {
		return fmt.Errorf("error writing multiplicity of event %d: %w", header.Number, err)
	}

	for _, t := range unpacker.ChannelTypes {
		if event.Total(t) == 0 {
			continue
		}
		hits := collectHits(header.Number, t, event)
		if err := writeArrayToTable(w.HitTables[t], &hits, w.HitCounters[t]); err != nil {
			return fmt.Errorf("error writing %v hits of event %d: %w", t, header.Number, err)
		}
		w.HitCounters[t] += len(hits)
	}

	w.EvtCounter++
	return nil
}

func collectHits(evtNumber int, t unpacker.ChannelType, event *unpacker.Event) []HitHDF5 {
	// The array MUST be allocated at creation, if not, HDF5 will panic
	hits := make([]HitHDF5, 0, event.Total(t))
	for channel := 0; channel < event.Channels(t); channel++ {
		for _, sub := range event.Hits(t, channel) {
			var cfdFail int32
			if sub.CFDFail {
				cfdFail = 1
			}
			hits = append(hits, HitHDF5{
				evt_number: int32(evtNumber),
				channel:    int32(channel),
				timestamp:  sub.Timestamp,
				adc:        int32(sub.ADCData),
				cfd:        int32(sub.CFDData),
				cfd_fail:   cfdFail,
			})
		}
	}
	return hits
}

func (w *Writer) Close() error {
	var errs []error

	closeDataset := func(dset *hdf5.Dataset, name string) {
		if dset == nil {
			return
		}
		if err := dset.Close(); err != nil {
			errs = append(errs, fmt.Errorf("error closing %s: %w", name, err))
		}
	}
	closeGroup := func(group *hdf5.Group, name string) {
		if group == nil {
			return
		}
		if err := group.Close(); err != nil {
			errs = append(errs, fmt.Errorf("error closing %s group: %w", name, err))
		}
	}

	closeDataset(w.EventTable, "event table")
	closeDataset(w.RunInfoTable, "run info table")
	closeDataset(w.MultiplicityArray, "multiplicity array")
	closeDataset(w.MappingTable, "channel mapping table")
	for _, t := range unpacker.ChannelTypes {
		closeDataset(w.HitTables[t], fmt.Sprintf("%v hit table", t))
	}
	closeGroup(w.RunGroup, "run")
	closeGroup(w.HitsGroup, "hits")
	closeGroup(w.ChannelsGroup, "channels")
	if w.File != nil {
		if err := w.File.Close(); err != nil {
			errs = append(errs, fmt.Errorf("error closing file: %w", err))
		}
	}

	if len(errs) > 0 {
		return errors.Join(errs...)
	}
	return nil
}
