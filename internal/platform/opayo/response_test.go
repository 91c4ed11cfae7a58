package opayo

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/merchkit/paygate/pkg/config"
)

func TestParseReply_SplitsOnFirstEquals(t *testing.T) {
	body := "VPSProtocol=4.00\r\n" +
		"Status=OK\r\n" +
		"VPSTxId={TX-1}\r\n" +
		"SecurityKey=K1LJKJ1L\r\n" +
		"NextURL=https://test.sagepay.com/gateway/service/cardselection?vpstxid={TX-1}&key=a=b\r\n"

	reply := ParseReply(body)
	require.Equal(t, "OK", reply.Status)
	require.Equal(t, "{TX-1}", reply.VPSTxID)
	require.Equal(t, "K1LJKJ1L", reply.SecurityKey)
	// values may themselves contain '='
	require.Equal(t, "https://test.sagepay.com/gateway/service/cardselection?vpstxid={TX-1}&key=a=b", reply.NextURL)
	require.Equal(t, map[string]string{"VPSProtocol": "4.00"}, reply.Extra)
}

func TestParseReply_Accepted(t *testing.T) {
	require.True(t, ParseReply("Status=OK\n").Accepted())
	require.True(t, ParseReply("Status=OK REPEATED\n").Accepted())
	require.False(t, ParseReply("Status=MALFORMED\nStatusDetail=Missing Vendor\n").Accepted())
}

func TestReplyFields_RoundTrip(t *testing.T) {
	reply := ParseReply("Status=OK\nStatusDetail=ok\nVPSTxId=tx\nSecurityKey=k\nNextURL=u\nVPSProtocol=4.00\n")
	fields := reply.Fields()
	require.Equal(t, map[string]string{
		"Status":       "OK",
		"StatusDetail": "ok",
		"VPSTxId":      "tx",
		"SecurityKey":  "k",
		"NextURL":      "u",
		"VPSProtocol":  "4.00",
	}, fields)
}

func TestClientRegister_PostsFormAndParsesReply(t *testing.T) {
	var gotContentType, gotVendor, gotAmount string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, r.ParseForm())
		gotContentType = r.Header.Get("Content-Type")
		gotVendor = r.PostForm.Get("Vendor")
		gotAmount = r.PostForm.Get("Amount")
		_, _ = w.Write([]byte("Status=OK\r\nVPSTxId={TX-9}\r\nSecurityKey=SK\r\nNextURL=https://pay.example/next\r\n"))
	}))
	defer srv.Close()

	client, err := NewClient(ClientOptions{Vendor: "acmevendor", Mode: config.GatewayModeTest, Endpoint: srv.URL})
	require.NoError(t, err)

	reply, err := client.Register(context.Background(), BuildRegistration(testBasket(), BillingAddress{}, "https://shop.example.com/notify"))
	require.NoError(t, err)
	require.Equal(t, "application/x-www-form-urlencoded", gotContentType)
	require.Equal(t, "acmevendor", gotVendor)
	require.Equal(t, "49.99", gotAmount)
	require.True(t, reply.Accepted())
	require.Equal(t, "{TX-9}", reply.VPSTxID)
	require.Equal(t, "https://pay.example/next", reply.NextURL)
}

func TestClientRegister_Non2xxIsTransportFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "upstream unavailable", http.StatusBadGateway)
	}))
	defer srv.Close()

	client, err := NewClient(ClientOptions{Vendor: "acmevendor", Mode: config.GatewayModeTest, Endpoint: srv.URL})
	require.NoError(t, err)

	reply, err := client.Register(context.Background(), BuildRegistration(testBasket(), BillingAddress{}, "https://shop.example.com/notify"))
	require.Error(t, err)
	require.Nil(t, reply)
}

func TestNewClient_ModeSelectsEndpoint(t *testing.T) {
	c, err := NewClient(ClientOptions{Vendor: "v", Mode: config.GatewayModeTest})
	require.NoError(t, err)
	require.Equal(t, testEndpoint, c.endpoint)

	c, err = NewClient(ClientOptions{Vendor: "v", Mode: config.GatewayModeLive})
	require.NoError(t, err)
	require.Equal(t, liveEndpoint, c.endpoint)

	_, err = NewClient(ClientOptions{Vendor: "v", Mode: "sandbox"})
	require.Error(t, err)
}
