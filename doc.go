// Package rtelnet implements a Telnet application-protocol client: socket
// transport, IAC option negotiation, a login sub-protocol, and a
// quiescence-based command executor, wrapped in a single Session facade.
//
// A minimal embedder:
//
//	cfg := rtelnet.NewConfig("192.168.1.10", "example", "secret")
//	session, err := rtelnet.NewSession(cfg)
//	if err != nil {
//		log.Fatal(err)
//	}
//	if err := session.Connect(context.Background()); err != nil {
//		log.Fatal(err)
//	}
//	defer session.Close()
//
//	banner, _ := session.FlushBanner(context.Background())
//	output, err := session.Execute(context.Background(), "ls -la")
package rtelnet
