package main

import (
	"fmt"
	"net/http"
	"time"

	"github.com/bluele/gcache"
	"github.com/joho/godotenv"
	"github.com/julienschmidt/httprouter"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/viper"

	"everink.io/ember/common/logging"
	rt "everink.io/ember/common/retry"
	cst "everink.io/ember/constants"
	le "everink.io/ember/errors"
	st "everink.io/ember/stores"
)

// letterServer serves the letter API plus the static front-end shell.
type letterServer struct {
	LS     st.LetterStore
	Router *httprouter.Router
	// readCache keeps hot letters out of the store on the read path; entries
	// expire well before the letter itself can.
	readCache gcache.Cache
}

func (s *letterServer) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.Router.ServeHTTP(w, r)
}

// start up application server and serve incoming requests
func serve() error {
	// a local .env is optional; real deployments configure the environment directly
	if err := godotenv.Load(); err != nil {
		log.WithError(err).Debug("no .env file loaded")
	}
	viper.AutomaticEnv()
	logging.SetupLog("EmberServer")

	ls, err := setupLetterStore()
	if err != nil {
		return err
	}
	defer ls.Close()

	svr := &letterServer{LS: ls}
	svr.readCache = setupReadCache()
	svr.SetupMux()

	host, port := viper.GetString(cst.EnvAppHost), viper.GetString(cst.EnvAppPort)
	if port == "" {
		port = "8080"
	}
	log.WithFields(log.Fields{
		"host": host,
		"port": port,
	}).Infof("ember server is starting up")
	addr := fmt.Sprintf("%s:%s", host, port)
	return http.ListenAndServe(addr, svr)
}

// setupLetterStore selects the backend exactly once from the environment:
// Redis when connection info is present, the local filesystem otherwise.
// Hosted runtimes without Redis get a store that answers every call with a
// misconfiguration error instead of minting links that cannot outlive the
// instance.
func setupLetterStore() (st.LetterStore, error) {
	cfg := st.Config{
		Dir:           letterDir(),
		HostedRuntime: viper.GetBool(cst.EnvHostedRuntime),
	}
	if viper.GetString(cst.EnvRedisHost) == "" {
		cfg.Backend = st.BackendLocal
		ls, serr := st.New(cfg)
		if serr != nil {
			return nil, serr
		}
		return ls, nil
	}
	cfg.Backend = st.BackendRemote
	cfg.RedisAddr = fmt.Sprintf("%s:%s", viper.GetString(cst.EnvRedisHost), viper.GetString(cst.EnvRedisPort))
	cfg.RedisPasswd = viper.GetString(cst.EnvRedisPasswd)
	cfg.RedisDB = viper.GetInt(cst.EnvRedisDB)
	ls, err := st.New(cfg)
	if err != nil {
		return nil, err
	}
	// verify the backend is up before taking traffic
	retryOpts := []rt.RetryOption{
		rt.WithTimeout(3 * time.Second),
		rt.WithBaseDelay(100 * time.Millisecond),
		rt.WithExp(2.0),
		rt.WithRetryOn(rt.IsDepOffline),
	}
	rs := ls.(*st.RedisStore)
	pingFn := func() error {
		_, perr := rs.DB.Ping().Result()
		return perr
	}
	if err := rt.Retry(pingFn, retryOpts...); err != nil {
		return nil, le.ErrServiceFailure("failed initializing Redis").WithCause(err)
	}
	return ls, nil
}

func setupReadCache() gcache.Cache {
	size := viper.GetInt(cst.EnvReadCacheSize)
	if size <= 0 {
		size = 256
	}
	return gcache.New(size).LRU().Expiration(5 * time.Minute).Build()
}

func letterDir() string {
	if dir := viper.GetString(cst.EnvLetterDir); dir != "" {
		return dir
	}
	return "data/letters"
}
