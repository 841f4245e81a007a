// Package signalr is a receive-only ASP.NET Core SignalR client speaking the
// JSON hub protocol over websockets. It implements realtime.Dialer.
//
// Dial performs the standard connection sequence:
//
//  1. POST <hub>/negotiate?negotiateVersion=1, following url/accessToken
//     redirects, unless WithSkipNegotiation is set;
//  2. websocket upgrade to <hub>?id=<connectionToken>;
//  3. handshake {"protocol":"json","version":1} terminated by 0x1e.
//
// Only server-to-client invocations are surfaced. Pings keep the connection
// alive every 15 seconds, and a connection that receives nothing for 30
// seconds is considered dropped. A close message from the server ends the
// event stream, and Err then reports ErrServerClosed with any error text.
//
//	d := signalr.NewDialer(signalr.WithLogger(log))
//	conn, err := d.Dial(ctx, "https://api.example.com/chathub", token)
//	for inv := range conn.Events() {
//	    ...
//	}
package signalr
