package main

import (
	"context"
	"database/sql"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"foodOrder/handlers"
	"foodOrder/payment"
	"foodOrder/repository"
	"foodOrder/services"
	"foodOrder/ws"

	"github.com/gorilla/mux"
	_ "github.com/lib/pq"
	"github.com/sirupsen/logrus"

	"github.com/redis/go-redis/v9"
)

var db *sql.DB
var rdb *redis.Client

var log = logrus.WithField("component", "main")

func main() {
	logrus.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	if os.Getenv("LOG_LEVEL") == "debug" {
		logrus.SetLevel(logrus.DebugLevel)
	}

	initDB()
	defer db.Close()
	defer rdb.Close()

	uR, err := repository.NewUserRepository(db)
	sR, err2 := repository.NewSessionRepository(rdb, context.Background())
	pR, _ := repository.NewProductRepository(db)
	cR, _ := repository.NewCategoryRepository(db)
	cpR, _ := repository.NewCouponRepository(db)
	cartR, _ := repository.NewCartRepository(rdb, context.Background())
	oR, _ := repository.NewOrderRepository(db)
	if err != nil {
		panic(err)
	}
	log.Info("db connected")
	if err2 != nil {
		panic(err2)
	}
	log.Info("redis connected")

	gateway := payment.NewHTTPGateway(os.Getenv("PAYMENT_BASE_URL"), os.Getenv("PAYMENT_API_KEY"))

	hub := ws.NewHub()
	go hub.Run()

	couponService := services.NewCouponService(cpR)
	hp := handlers.HandlerParams{
		UsrService:  services.NewUserService(uR, sR),
		PrdService:  services.NewProductService(pR, cR),
		CrtService:  services.NewCartService(pR, cartR),
		CatsService: services.NewCategoryService(cR, pR),
		CpnService:  couponService,
		OrdService:  services.NewOrderService(sR, pR, cartR, oR, couponService, gateway, hub),
		Hub:         hub,
	}
	ha := handlers.NewHandler(hp)
	router := mux.NewRouter()
	router.Use(ha.ErrorHandleMiddleware)
	subAuth := router.NewRoute().Subrouter()
	subAuth.Use(ha.AuthMiddleware)
	subManAuth := router.PathPrefix("/admin").Subrouter()
	subManAuth.Use(ha.ManagerAuthMiddleware)

	router.HandleFunc("/", ha.Welcome)
	router.HandleFunc("/users/signin", ha.Signin)
	router.HandleFunc("/users/signup", ha.Signup)
	subAuth.HandleFunc("/users/refresh", ha.Refresh)
	subAuth.HandleFunc("/users/logout", ha.Logout)
	subAuth.HandleFunc("/users/change_password", ha.ChangePassword)
	subManAuth.HandleFunc("/users/create", ha.CreateUser)

	router.HandleFunc("/menu", ha.GetAllCategories).Methods("GET")
	router.HandleFunc("/menu/{id:[0-9]+}", ha.GetCategoryWithProducts).Methods("GET")
	router.HandleFunc("/products/{id:[0-9]+}", ha.GetProduct).Methods("GET")

	router.HandleFunc("/cart", ha.GetCart).Methods("GET")
	router.HandleFunc("/cart", ha.ClearCart).Methods("DELETE")
	router.HandleFunc("/cart/items", ha.AddToCart).Methods("POST")
	router.HandleFunc("/cart/items", ha.UpdateCartItem).Methods("PATCH")
	router.HandleFunc("/cart/items", ha.DeleteFromCart).Methods("DELETE")
	router.HandleFunc("/cart/coupon", ha.ApplyCoupon).Methods("POST")
	subAuth.HandleFunc("/cart/checkout", ha.Checkout).Methods("POST")

	subAuth.HandleFunc("/orders/", ha.GetCurrentUserOrders)
	subAuth.HandleFunc("/orders/{id:[0-9]+}/cancel", ha.CancelOrder).Methods("POST")

	router.HandleFunc("/ws", ha.HandleWebsocket)

	subManAuth.HandleFunc("/products/create", ha.CreateProduct).Methods("POST")
	subManAuth.HandleFunc("/products/{id:[0-9]+}/update", ha.UpdateProduct)
	subManAuth.HandleFunc("/products/{id:[0-9]+}/update/option", ha.SetProductOption).Methods("POST")
	subManAuth.HandleFunc("/products/{id:[0-9]+}/delete/option/{name}", ha.RemoveProductOption).Methods("DELETE")
	subManAuth.HandleFunc("/products/{id:[0-9]+}/update/category", ha.UpdateProductCategory).Methods("POST")
	subManAuth.HandleFunc("/products/{id:[0-9]+}/delete/category", ha.RemoveProductCategory).Methods("DELETE")

	subManAuth.HandleFunc("/categories/create", ha.CreateCategory).Methods("POST")
	subManAuth.HandleFunc("/categories/{id:[0-9]+}/update", ha.UpdateCategory).Methods("POST")

	subManAuth.HandleFunc("/coupons", ha.GetAllCoupons).Methods("GET")
	subManAuth.HandleFunc("/coupons/create", ha.CreateCoupon).Methods("POST")
	subManAuth.HandleFunc("/coupons/{id:[0-9]+}/update", ha.SetCouponActive).Methods("POST")

	subManAuth.HandleFunc("/orders/{id:[0-9]+}", ha.GetOrderById).Methods("GET")
	subManAuth.HandleFunc("/orders/search", ha.SearchOrders).Methods("GET")
	subManAuth.HandleFunc("/orders/{id:[0-9]+}/status", ha.SetOrderStatus).Methods("POST")

	subManAuth.HandleFunc("/ws/stats", ha.WsStats).Methods("GET")

	addr := os.Getenv("LISTEN_ADDR")
	if addr == "" {
		addr = ":8080"
	}
	srv := &http.Server{
		Addr:    addr,
		Handler: router,
	}

	go func() {
		log.Infof("starting server on %s", addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("listen: %v", err)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop

	log.Info("shutting down")
	hub.Shutdown()
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Errorf("shutdown: %v", err)
	}
}

func initDB() {
	host := os.Getenv("DATABASE_HOST")
	port := os.Getenv("DATABASE_PORT")
	user := os.Getenv("DATABASE_USER")
	pass := os.Getenv("DATABASE_PASSWORD")
	dbname := os.Getenv("DATABASE_NAME")
	var err error

	connStr := fmt.Sprintf("postgres://%s:%s@%s:%s/%s?sslmode=disable", user, pass, host, port, dbname)
	db, err = sql.Open("postgres", connStr)
	if err != nil {
		panic(err)
	}

	redis_host := os.Getenv("REDIS_HOST")
	redis_port := os.Getenv("REDIS_PORT")

	rdb = redis.NewClient(&redis.Options{
		Addr:     redis_host + ":" + redis_port,
		Password: "",
		DB:       0,
	})
	ctx, cncl := context.WithTimeout(context.Background(), 5*time.Second)
	defer cncl()
	if status := rdb.Ping(ctx); status.Err() != nil {
		panic("redis is not working: " + status.Err().Error())
	}
}
