// Command coordinatord runs the mixing session coordinator daemon: an
// HTTP+JSON binding over the four inbound wire messages of spec §6,
// plus a maintenance ticker and an index page at "/" that returns a
// fixed JSON message. Every route is wrapped in an scs session
// manager; no handler checks the session.
// Grounded on the teacher's coordinator/server.go.
package main

import (
	"database/sql"
	"flag"
	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/alexedwards/scs/v2"
	_ "github.com/mattn/go-sqlite3"

	"github.com/opencoinjoin/coordinator/internal/collab"
	"github.com/opencoinjoin/coordinator/internal/config"
	"github.com/opencoinjoin/coordinator/internal/keystore"
	"github.com/opencoinjoin/coordinator/internal/pool"
	"github.com/opencoinjoin/coordinator/internal/store"
)

type daemon struct {
	coord *pool.Coordinator
	db    *sql.DB
}

var sessionManager *scs.SessionManager

func main() {
	passphrase := flag.String("passphrase", "", "passphrase protecting the operator key file")
	flag.Parse()

	cfg, err := config.LoadServerConfig()
	if err != nil {
		fmt.Fprintf(os.Stderr, "%s\n", err.Error())
		os.Exit(1)
	}

	db, err := sql.Open("sqlite3", cfg.Database)
	if err != nil {
		fmt.Fprintf(os.Stderr, "%s\n", err.Error())
		os.Exit(1)
	}
	defer db.Close()

	if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
		fmt.Fprintf(os.Stderr, "%s\n", err.Error())
		os.Exit(1)
	}
	if err := store.EnsureTablesExist(db); err != nil {
		fmt.Fprintf(os.Stderr, "%s\n", err.Error())
		os.Exit(1)
	}

	signer, err := keystore.LoadOrGenerate(cfg.KeyFile, *passphrase)
	if err != nil {
		fmt.Fprintf(os.Stderr, "%s\n", err.Error())
		os.Exit(1)
	}

	st := store.New(db)
	coord := pool.New(cfg.ToParams())
	coord.ChainTip = collab.NewStaticRegistry()
	coord.PeerStore = st
	coord.Mempool = &collab.LoggingMempool{Recorder: st}
	coord.Transport = collab.NewHTTPTransport()
	coord.Denoms = pool.StandardDenominations{}
	coord.Collateral = collab.FixedCollateralValidator{Amount: pool.DefaultCollateralAmount}
	coord.Validity = collab.DefaultValidityChecker{}
	coord.Script = pool.BtcdScriptVerifier{}
	coord.Signer = signer
	coord.Clock = collab.SystemClock{}
	coord.Rand = collab.NewCryptoRand()
	coord.Broadcasts = st

	d := &daemon{coord: coord, db: db}

	go func() {
		ticker := time.NewTicker(1 * time.Second)
		defer ticker.Stop()
		for range ticker.C {
			coord.DoMaintenance()
		}
	}()

	sessionManager = scs.New()
	sessionManager.Lifetime = 12 * time.Hour

	mux := http.NewServeMux()
	mux.HandleFunc("/", indexPage)
	mux.HandleFunc("/ds/accept", d.dsAccept)
	mux.HandleFunc("/ds/queue", d.dsQueue)
	mux.HandleFunc("/ds/vin", d.dsVin)
	mux.HandleFunc("/ds/signfinaltx", d.dsSignFinalTx)

	http.ListenAndServe(cfg.Hostname, sessionManager.LoadAndSave(mux))
}
