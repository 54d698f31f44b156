package embeddedmqtt

import (
	"testing"
	"time"

	mqtt "github.com/mochi-mqtt/server/v2"
	"github.com/mochi-mqtt/server/v2/hooks/auth"
	"github.com/mochi-mqtt/server/v2/packets"
	"go.uber.org/zap"

	"github.com/lantian699/jellyfin-android/pkg/jf"
)

func TestNamespaceLedgerAnonymous(t *testing.T) {
	ledger, err := namespaceLedger(Config{AllowAnonymous: true, TopicBase: jf.BaseTopic})
	if err != nil {
		t.Fatalf("namespaceLedger: %v", err)
	}
	if len(ledger.Auth) != 1 || !ledger.Auth[0].Allow {
		t.Fatalf("expected a single allow-all auth rule, got %+v", ledger.Auth)
	}
	if len(ledger.ACL) != 1 {
		t.Fatalf("expected a single acl rule, got %+v", ledger.ACL)
	}
	access, ok := ledger.ACL[0].Filters[auth.RString("jf/v1/#")]
	if !ok || access != auth.ReadWrite {
		t.Fatalf("expected read-write filter on jf/v1/#, got %+v", ledger.ACL[0].Filters)
	}
}

func TestNamespaceLedgerCredentialed(t *testing.T) {
	ledger, err := namespaceLedger(Config{Username: "jfd", Password: "secret", TopicBase: "jf/v1"})
	if err != nil {
		t.Fatalf("namespaceLedger: %v", err)
	}
	if len(ledger.Auth) != 1 || ledger.Auth[0].Username != auth.RString("jfd") {
		t.Fatalf("expected auth rule for jfd, got %+v", ledger.Auth)
	}
	if len(ledger.ACL) != 1 || ledger.ACL[0].Username != auth.RString("jfd") {
		t.Fatalf("expected acl rule for jfd, got %+v", ledger.ACL)
	}
	if _, ok := ledger.ACL[0].Filters[auth.RString("jf/v1/#")]; !ok {
		t.Fatalf("expected filter scoped to jf/v1/#, got %+v", ledger.ACL[0].Filters)
	}
}

func TestNamespaceLedgerRequiresAuthConfig(t *testing.T) {
	if _, err := namespaceLedger(Config{TopicBase: jf.BaseTopic}); err == nil {
		t.Fatalf("expected error without allow_anonymous or username")
	}
}

func TestNamespaceFilter(t *testing.T) {
	if got := namespaceFilter("jf/v1"); got != "jf/v1/#" {
		t.Fatalf("namespaceFilter: got %q", got)
	}
	if got := namespaceFilter("jf/v1/"); got != "jf/v1/#" {
		t.Fatalf("namespaceFilter with trailing slash: got %q", got)
	}
}

func TestInlinePublishSubscribe(t *testing.T) {
	server, err := newServer(zap.NewNop(), Config{AllowAnonymous: true, TopicBase: jf.BaseTopic})
	if err != nil {
		t.Fatalf("newServer: %v", err)
	}
	defer server.Close()

	received := make(chan packets.Packet, 1)
	handler := func(_ *mqtt.Client, _ packets.Subscription, pk packets.Packet) {
		received <- pk
	}
	if err := server.Subscribe(jf.BaseTopic+"/node/+/presence", 1, handler); err != nil {
		t.Fatalf("subscribe: %v", err)
	}

	if err := server.Publish(jf.BaseTopic+"/node/living-room/presence", []byte("online"), false, 0); err != nil {
		t.Fatalf("publish: %v", err)
	}

	select {
	case pk := <-received:
		if string(pk.Payload) != "online" {
			t.Fatalf("unexpected payload %q", pk.Payload)
		}
	case <-time.After(2 * time.Second):
		t.Fatalf("timeout waiting for message")
	}
}

func TestBrokerURL(t *testing.T) {
	if BrokerURL("127.0.0.1:1883", false) != "mqtt://127.0.0.1:1883" {
		t.Fatalf("expected mqtt scheme")
	}
	if BrokerURL("127.0.0.1:8883", true) != "mqtts://127.0.0.1:8883" {
		t.Fatalf("expected mqtts scheme")
	}
}
