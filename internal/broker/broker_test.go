package broker

import (
	"context"
	"errors"
	"testing"

	"github.com/segmentio/kafka-go"
)

type fakeWriter struct {
	msgs []kafka.Message
	err  error
}

func (f *fakeWriter) WriteMessages(_ context.Context, msgs ...kafka.Message) error {
	if f.err != nil {
		return f.err
	}
	f.msgs = append(f.msgs, msgs...)
	return nil
}

func TestKafkaPublisherPublish(t *testing.T) {
	fw := &fakeWriter{}
	p := NewKafkaPublisherWith(fw)

	if err := p.Publish(context.Background(), []byte("7"), []byte(`{"orderId":7}`)); err != nil {
		t.Fatalf("publish: %v", err)
	}

	if len(fw.msgs) != 1 {
		t.Fatalf("want 1 message, got %d", len(fw.msgs))
	}
	if string(fw.msgs[0].Key) != "7" || string(fw.msgs[0].Value) != `{"orderId":7}` {
		t.Fatalf("unexpected message: %+v", fw.msgs[0])
	}
}

func TestKafkaPublisherPublishError(t *testing.T) {
	wantErr := errors.New("broker down")
	p := NewKafkaPublisherWith(&fakeWriter{err: wantErr})

	err := p.Publish(context.Background(), []byte("k"), []byte("v"))
	if !errors.Is(err, wantErr) {
		t.Fatalf("want wrapped broker error, got %v", err)
	}
}

type recordingPublisher struct {
	keys []string
	err  error
}

func (r *recordingPublisher) Publish(_ context.Context, key, _ []byte) error {
	if r.err != nil {
		return r.err
	}
	r.keys = append(r.keys, string(key))
	return nil
}

func TestMultiPublisherFansOut(t *testing.T) {
	a := &recordingPublisher{}
	b := &recordingPublisher{}
	m := NewMultiPublisher(a, b)

	if err := m.Publish(context.Background(), []byte("k1"), []byte("v1")); err != nil {
		t.Fatalf("publish: %v", err)
	}

	if len(a.keys) != 1 || len(b.keys) != 1 {
		t.Fatalf("both publishers must receive the message: a=%v b=%v", a.keys, b.keys)
	}
}

func TestMultiPublisherStopsOnError(t *testing.T) {
	bad := &recordingPublisher{err: errors.New("disk full")}
	after := &recordingPublisher{}
	m := NewMultiPublisher(bad, after)

	if err := m.Publish(context.Background(), []byte("k"), []byte("v")); err == nil {
		t.Fatal("want error from first publisher")
	}
	if len(after.keys) != 0 {
		t.Fatalf("later publishers must not run after a failure: %v", after.keys)
	}
}

func TestSplitBrokers(t *testing.T) {
	got := splitBrokers(" localhost:9092, kafka-2:9092 ,,")
	if len(got) != 2 || got[0] != "localhost:9092" || got[1] != "kafka-2:9092" {
		t.Fatalf("unexpected brokers: %v", got)
	}
}
