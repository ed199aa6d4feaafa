package changelog

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/segmentio/kafka-go"
)

func TestFileWriter_Append(t *testing.T) {
	dir := t.TempDir()
	w, err := NewFileWriter(dir, "registry.jsonl")
	if err != nil {
		t.Fatalf("NewFileWriter: %v", err)
	}

	e1 := Event{Op: OpAdd, OrderID: "rec-1", Vendor: "SUSM", OrderNum: "1001", TS: 1}
	e2 := Event{Op: OpDelete, OrderID: "rec-1", TS: 2}
	if err := w.Append(e1); err != nil {
		t.Fatalf("append1: %v", err)
	}
	if err := w.Append(e2); err != nil {
		t.Fatalf("append2: %v", err)
	}

	f, err := os.Open(filepath.Join(dir, "registry.jsonl"))
	if err != nil {
		t.Fatalf("open file: %v", err)
	}
	defer f.Close()

	s := bufio.NewScanner(f)
	var got []Event
	for s.Scan() {
		var e Event
		if err := json.Unmarshal(s.Bytes(), &e); err != nil {
			t.Fatalf("unmarshal: %v", err)
		}
		got = append(got, e)
	}
	if err := s.Err(); err != nil {
		t.Fatalf("scan: %v", err)
	}
	if len(got) != 2 || got[0] != e1 || got[1] != e2 {
		t.Fatalf("mismatch: %+v", got)
	}
}

// fakeKafkaWriter implements kafkaMessageWriter for tests
type fakeKafkaWriter struct {
	msgs []kafka.Message
	fail bool
}

func (f *fakeKafkaWriter) WriteMessages(ctx context.Context, msgs ...kafka.Message) error {
	if f.fail {
		return errors.New("fail")
	}
	f.msgs = append(f.msgs, msgs...)
	return nil
}

func TestKafkaWriter_Append(t *testing.T) {
	fk := &fakeKafkaWriter{}
	kw := NewKafkaWriterWith(fk)
	if err := kw.Append(Event{Op: OpAdd, OrderID: "rec-9", TS: 1}); err != nil {
		t.Fatalf("append: %v", err)
	}
	if len(fk.msgs) != 1 || string(fk.msgs[0].Key) != "rec-9" {
		t.Fatalf("bad message: %+v", fk.msgs)
	}
	// events without an order id key on the op name
	if err := kw.Append(Event{Op: OpReset, TS: 2}); err != nil {
		t.Fatalf("append reset: %v", err)
	}
	if string(fk.msgs[1].Key) != "reset" {
		t.Fatalf("bad reset key: %s", fk.msgs[1].Key)
	}
}

func TestKafkaWriter_AppendFail(t *testing.T) {
	kw := NewKafkaWriterWith(&fakeKafkaWriter{fail: true})
	if err := kw.Append(Event{Op: OpAdd, TS: 1}); err == nil {
		t.Fatal("expected error")
	}
}

func TestMultiWriter(t *testing.T) {
	dir := t.TempDir()
	fw, _ := NewFileWriter(dir, "a.jsonl")
	fk := &fakeKafkaWriter{}
	mw := NewMultiWriter(fw, NewKafkaWriterWith(fk))
	if err := mw.Append(Event{Op: OpAdd, OrderID: "x", TS: 1}); err != nil {
		t.Fatalf("append: %v", err)
	}
	if len(fk.msgs) != 1 {
		t.Fatalf("kafka leg missed the event")
	}
	if _, err := os.Stat(filepath.Join(dir, "a.jsonl")); err != nil {
		t.Fatalf("file leg missed the event: %v", err)
	}
}
