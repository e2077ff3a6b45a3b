// Package client implements the Plume client connection.
//
// A Conn owns one transport stream, the subscription registry, and the
// telemetry counters. Callers connect, subscribe and publish from any
// goroutine; one dedicated goroutine drives Wait, the dispatch loop
// that is the sole reader of the stream.
//
//	conn := client.New(client.Config{Host: "localhost", Port: 4222})
//	if err := conn.Connect(ctx); err != nil {
//	    ...
//	}
//	sid, _ := conn.Subscribe("updates", func(msg client.Msg) {
//	    fmt.Printf("%s: %s\n", msg.Subject, msg.Data)
//	})
//	conn.Publish("updates", []byte("hello"))
//	err := conn.Wait(ctx, 0) // dispatch until EOF, error, or cancel
//
// Reconnection is always caller-initiated. The dispatch loop halts on
// the first protocol error and surfaces it; end-of-stream is graceful
// and returns nil after closing the connection.
package client
