package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"runtime/debug"
	"strconv"
	"time"

	"foodOrder/cart"
	"foodOrder/entities"
	"foodOrder/models"
	"foodOrder/services"
	"foodOrder/ws"

	"github.com/gorilla/mux"
	"github.com/gorilla/websocket"
	"github.com/sirupsen/logrus"
)

var log = logrus.WithField("component", "handlers")

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin:     func(r *http.Request) bool { return true },
}

type Handler struct {
	us  services.UserService
	ps  services.ProductService
	cs  services.CartService
	cas services.CategoryService
	cps services.CouponService
	ors services.OrderService
	hub *ws.Hub
}

type HandlerParams struct {
	UsrService  services.UserService
	PrdService  services.ProductService
	CrtService  services.CartService
	CatsService services.CategoryService
	CpnService  services.CouponService
	OrdService  services.OrderService
	Hub         *ws.Hub
}

func NewHandler(params HandlerParams) *Handler {
	return &Handler{
		cs:  params.CrtService,
		us:  params.UsrService,
		ors: params.OrdService,
		cas: params.CatsService,
		ps:  params.PrdService,
		cps: params.CpnService,
		hub: params.Hub,
	}
}

func (h *Handler) Welcome(w http.ResponseWriter, r *http.Request) {
	var welcome, name string
	var uModel models.User_db
	var exists bool

	c, err := r.Cookie("sessionId")
	if err != nil {
		name = "guest"
	} else {
		sessionId := c.Value
		uModel, exists = h.us.WelcomeRequest(sessionId)
		if !exists {
			name = "guest"
		} else {
			name = uModel.Nickname
		}
	}
	welcome = "Hello, " + name + "!"
	w.Write([]byte(welcome))
}

//user

func (h *Handler) Signup(w http.ResponseWriter, r *http.Request) {
	creds := models.Credentials{}
	err := json.NewDecoder(r.Body).Decode(&creds)
	if err != nil {
		log.Errorf("Signup: unmarshal: %v", err)
		http.Error(w, "bad request", http.StatusBadRequest)
		return
	}
	creds.Role = "customer"

	_, err = h.us.SignupRequest(creds)
	if err != nil {
		WriteErrorResponse(w, err)
		return
	}
	w.WriteHeader(http.StatusOK)
}

func (h *Handler) Signin(w http.ResponseWriter, r *http.Request) {
	creds := models.Credentials{}
	var sessionId string

	err := json.NewDecoder(r.Body).Decode(&creds)
	if err != nil {
		log.Errorf("Signin: unmarshal: %v", err)
		http.Error(w, "bad request", http.StatusBadRequest)
		return
	}
	_, sessionId, err = h.us.SigninRequest(creds.Username, creds.Password)
	if err != nil {
		WriteErrorResponse(w, err)
		return
	}

	http.SetCookie(w, &http.Cookie{
		Name:    "sessionId",
		Value:   sessionId,
		Path:    "/",
		Expires: time.Now().Add(24 * time.Hour),
		// redis 30 min
	})
	w.WriteHeader(http.StatusOK)
}

func (h *Handler) Refresh(w http.ResponseWriter, r *http.Request) {
	c, _ := r.Cookie("sessionId")
	sessionId := c.Value
	err := h.us.RefreshRequest(sessionId)
	if err != nil {
		http.Error(w, "server error", http.StatusInternalServerError)
		return
	}
	http.SetCookie(w, &http.Cookie{
		Name:    "sessionId",
		Value:   sessionId,
		Path:    "/",
		Expires: time.Now().Add(24 * time.Hour),
		// redis 30 min
	})
	w.WriteHeader(http.StatusOK)
}

func (h *Handler) Logout(w http.ResponseWriter, r *http.Request) {
	c, _ := r.Cookie("sessionId")
	sessionId := c.Value

	err := h.us.DeleteSessionRequest(sessionId)
	if err != nil {
		http.Error(w, "server error", http.StatusInternalServerError)
		return
	}
	http.SetCookie(w, &http.Cookie{
		Name:    "sessionId",
		Value:   "",
		Path:    "/",
		Expires: time.Now(),
	})
	w.WriteHeader(http.StatusOK)
}

func (h *Handler) ChangePassword(w http.ResponseWriter, r *http.Request) {
	c, _ := r.Cookie("sessionId")
	sessionId := c.Value

	data := models.PasswordData{}
	err := json.NewDecoder(r.Body).Decode(&data)
	if err != nil {
		log.Errorf("ChangePassword: unmarshal: %v", err)
		http.Error(w, "bad request", http.StatusBadRequest)
		return
	}

	err = h.us.ChangePasswordRequest(sessionId, data.OldPassword, data.NewPassword)
	if err != nil {
		WriteErrorResponse(w, err)
		return
	}
	http.SetCookie(w, &http.Cookie{
		Name:    "sessionId",
		Value:   "",
		Path:    "/",
		Expires: time.Now(),
	})
	w.WriteHeader(http.StatusOK)
}

func (h *Handler) CreateUser(w http.ResponseWriter, r *http.Request) {
	creds := models.Credentials{}
	err := json.NewDecoder(r.Body).Decode(&creds)
	if err != nil {
		log.Errorf("CreateUser: unmarshal: %v", err)
		http.Error(w, "bad request", http.StatusBadRequest)
		return
	}

	err = h.us.CreateUserRequest(creds)
	if err != nil {
		WriteErrorResponse(w, err)
		return
	}
	w.WriteHeader(http.StatusOK)
}

// products

func (h *Handler) GetProduct(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	id, err := strconv.Atoi(vars["id"])
	if err != nil {
		http.Error(w, "bad request", http.StatusBadRequest)
		return
	}

	prod, err := h.ps.GetProductById(id)
	if err != nil {
		WriteErrorResponse(w, err)
		return
	}
	writeJson(w, prod)
}

func (h *Handler) CreateProduct(w http.ResponseWriter, r *http.Request) {
	var pModel models.Product
	err := json.NewDecoder(r.Body).Decode(&pModel)
	if err != nil {
		log.Errorf("CreateProduct: unmarshal: %v", err)
		http.Error(w, "bad request", http.StatusBadRequest)
		return
	}
	err = h.ps.CreateProduct(pModel)
	if err != nil {
		WriteErrorResponse(w, err)
		return
	}
	w.WriteHeader(http.StatusOK)
}

func (h *Handler) UpdateProduct(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	var pModel models.Product

	id, err := strconv.Atoi(vars["id"])
	if err != nil {
		http.Error(w, "bad request", http.StatusBadRequest)
		return
	}
	err = json.NewDecoder(r.Body).Decode(&pModel)
	if err != nil {
		log.Errorf("UpdateProduct: unmarshal: %v", err)
		http.Error(w, "bad request", http.StatusBadRequest)
		return
	}

	pModel.Id = id
	updatedProd, err := h.ps.UpdateProductById(pModel)
	if err != nil {
		WriteErrorResponse(w, err)
		return
	}
	writeJson(w, updatedProd)
}

func (h *Handler) SetProductOption(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	var opt entities.ProductOption

	id, err := strconv.Atoi(vars["id"])
	if err != nil {
		http.Error(w, "bad request", http.StatusBadRequest)
		return
	}
	err = json.NewDecoder(r.Body).Decode(&opt)
	if err != nil {
		log.Errorf("SetProductOption: unmarshal: %v", err)
		http.Error(w, "bad request", http.StatusBadRequest)
		return
	}

	err = h.ps.SetProductOption(id, opt)
	if err != nil {
		WriteErrorResponse(w, err)
		return
	}
	w.WriteHeader(http.StatusOK)
}

func (h *Handler) RemoveProductOption(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	id, err := strconv.Atoi(vars["id"])
	if err != nil {
		http.Error(w, "bad request", http.StatusBadRequest)
		return
	}
	name := vars["name"]

	err = h.ps.RemoveProductOption(id, name)
	if err != nil {
		WriteErrorResponse(w, err)
		return
	}
	w.WriteHeader(http.StatusOK)
}

func (h *Handler) UpdateProductCategory(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	var category entities.Category

	id, err := strconv.Atoi(vars["id"])
	if err != nil {
		http.Error(w, "bad request", http.StatusBadRequest)
		return
	}
	err = json.NewDecoder(r.Body).Decode(&category)
	if err != nil {
		log.Errorf("UpdateProductCategory: unmarshal: %v", err)
		http.Error(w, "bad request", http.StatusBadRequest)
		return
	}

	err = h.ps.UpdateProductCategory(id, category)
	if err != nil {
		WriteErrorResponse(w, err)
		return
	}
	w.WriteHeader(http.StatusOK)
}

func (h *Handler) RemoveProductCategory(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	id, err := strconv.Atoi(vars["id"])
	if err != nil {
		http.Error(w, "bad request", http.StatusBadRequest)
		return
	}
	err = h.ps.RemoveProductCategory(id)
	if err != nil {
		WriteErrorResponse(w, err)
		return
	}
	w.WriteHeader(http.StatusOK)
}

// categories

func (h *Handler) GetAllCategories(w http.ResponseWriter, r *http.Request) {
	tree, err := h.cas.GetAllCategories()
	if err != nil {
		http.Error(w, "server error", http.StatusInternalServerError)
		return
	}
	writeJson(w, tree)
}

func (h *Handler) GetCategoryWithProducts(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	id, err := strconv.Atoi(vars["id"])
	if err != nil {
		http.Error(w, "bad request", http.StatusBadRequest)
		return
	}

	cats, prods, err := h.cas.GetCategoryWithProducts(id)
	if err != nil {
		WriteErrorResponse(w, err)
		return
	}
	if cats == nil {
		cats = []entities.Category{}
	}
	if prods == nil {
		prods = []entities.ProductPreview{}
	}
	writeJson(w, map[string]any{
		"categories": cats,
		"products":   prods,
	})
}

func (h *Handler) CreateCategory(w http.ResponseWriter, r *http.Request) {
	var category models.CategoryRequest
	err := json.NewDecoder(r.Body).Decode(&category)
	if err != nil {
		log.Errorf("CreateCategory: unmarshal: %v", err)
		http.Error(w, "bad request", http.StatusBadRequest)
		return
	}

	category.Id, err = h.cas.CreateCategory(category)
	if err != nil {
		WriteErrorResponse(w, err)
		return
	}
	w.Write([]byte(strconv.Itoa(category.Id)))
}

func (h *Handler) UpdateCategory(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	var category models.CategoryRequest
	id, err := strconv.Atoi(vars["id"])
	if err != nil {
		http.Error(w, "bad request", http.StatusBadRequest)
		return
	}
	err = json.NewDecoder(r.Body).Decode(&category)
	if err != nil {
		log.Errorf("UpdateCategory: unmarshal: %v", err)
		http.Error(w, "bad request", http.StatusBadRequest)
		return
	}
	category.Id = id
	err = h.cas.UpdateCategory(category)
	if err != nil {
		WriteErrorResponse(w, err)
		return
	}
	w.WriteHeader(http.StatusOK)
}

// cart

func (h *Handler) GetCart(w http.ResponseWriter, r *http.Request) {
	cartSessionId, created, err := h.cartSession(w, r, false)
	if err != nil {
		http.Error(w, "server error", http.StatusInternalServerError)
		return
	}
	if created {
		// no cookie yet, nothing stored either
		writeJson(w, h.emptyCart())
		return
	}
	crt, err := h.cs.GetCart(cartSessionId)
	if err != nil {
		WriteErrorResponse(w, err)
		return
	}
	writeJson(w, crt)
}

func (h *Handler) AddToCart(w http.ResponseWriter, r *http.Request) {
	req := models.CartAddRequest{}
	err := json.NewDecoder(r.Body).Decode(&req)
	if err != nil {
		log.Errorf("AddToCart: unmarshal: %v", err)
		http.Error(w, "bad request", http.StatusBadRequest)
		return
	}
	cartSessionId, _, err := h.cartSession(w, r, true)
	if err != nil {
		http.Error(w, "server error", http.StatusInternalServerError)
		return
	}
	crt, err := h.cs.AddCartItem(cartSessionId, req)
	if err != nil {
		WriteErrorResponse(w, err)
		return
	}
	writeJson(w, crt)
}

func (h *Handler) UpdateCartItem(w http.ResponseWriter, r *http.Request) {
	req := models.CartUpdateRequest{}
	err := json.NewDecoder(r.Body).Decode(&req)
	if err != nil {
		log.Errorf("UpdateCartItem: unmarshal: %v", err)
		http.Error(w, "bad request", http.StatusBadRequest)
		return
	}
	c, err := r.Cookie("cartSessionId")
	if err != nil {
		writeJson(w, h.emptyCart())
		return
	}
	crt, err := h.cs.UpdateCartItem(c.Value, req)
	if err != nil {
		WriteErrorResponse(w, err)
		return
	}
	writeJson(w, crt)
}

func (h *Handler) DeleteFromCart(w http.ResponseWriter, r *http.Request) {
	req := models.CartAddRequest{}
	err := json.NewDecoder(r.Body).Decode(&req)
	if err != nil {
		log.Errorf("DeleteFromCart: unmarshal: %v", err)
		http.Error(w, "bad request", http.StatusBadRequest)
		return
	}
	c, err := r.Cookie("cartSessionId")
	if err != nil {
		writeJson(w, h.emptyCart())
		return
	}
	crt, err := h.cs.RemoveCartItem(c.Value, req.ProductId, req.Options)
	if err != nil {
		WriteErrorResponse(w, err)
		return
	}
	writeJson(w, crt)
}

func (h *Handler) ApplyCoupon(w http.ResponseWriter, r *http.Request) {
	req := models.CouponRequest{}
	err := json.NewDecoder(r.Body).Decode(&req)
	if err != nil {
		log.Errorf("ApplyCoupon: unmarshal: %v", err)
		http.Error(w, "bad request", http.StatusBadRequest)
		return
	}
	c, err := r.Cookie("cartSessionId")
	if err != nil {
		http.Error(w, "bad request", http.StatusBadRequest)
		return
	}

	coupon, err := h.cps.ValidateCoupon(req.Code)
	if err != nil {
		WriteErrorResponse(w, err)
		return
	}
	crt, err := h.cs.ApplyDiscount(c.Value, coupon.Discount, coupon.Code)
	if err != nil {
		WriteErrorResponse(w, err)
		return
	}
	writeJson(w, crt)
}

func (h *Handler) ClearCart(w http.ResponseWriter, r *http.Request) {
	c, err := r.Cookie("cartSessionId")
	if err != nil {
		w.WriteHeader(http.StatusOK)
		return
	}
	err = h.cs.ClearCart(c.Value)
	if err != nil {
		WriteErrorResponse(w, err)
		return
	}
	w.WriteHeader(http.StatusOK)
}

func (h *Handler) Checkout(w http.ResponseWriter, r *http.Request) {
	sc, _ := r.Cookie("sessionId")
	sessionId := sc.Value

	cc, err := r.Cookie("cartSessionId")
	if err != nil {
		http.Error(w, "bad request", http.StatusBadRequest)
		return
	}
	cartSessionId := cc.Value

	req := models.CheckoutRequest{}
	err = json.NewDecoder(r.Body).Decode(&req)
	if err != nil {
		log.Errorf("Checkout: unmarshal: %v", err)
		http.Error(w, "bad request", http.StatusBadRequest)
		return
	}

	order, err := h.ors.Checkout(sessionId, cartSessionId, req.PaymentToken)
	if err != nil {
		WriteErrorResponse(w, err)
		return
	}
	http.SetCookie(w, &http.Cookie{
		Name:    "cartSessionId",
		Value:   "",
		Path:    "/",
		Expires: time.Now(),
	})
	writeJsonStatus(w, http.StatusCreated, order)
}

// orders

func (h *Handler) GetOrderById(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	id, err := strconv.Atoi(vars["id"])
	if err != nil {
		http.Error(w, "bad request", http.StatusBadRequest)
		return
	}

	var order entities.Order
	order, err = h.ors.GetOrderById(id)
	if err != nil {
		WriteErrorResponse(w, err)
		return
	}
	writeJson(w, order)
}

func (h *Handler) SearchOrders(w http.ResponseWriter, r *http.Request) {
	timeStart := r.URL.Query().Get("timestart")
	timeEnd := r.URL.Query().Get("timeend")
	userId := r.URL.Query().Get("userid")
	status := r.URL.Query().Get("status")
	prodId := r.URL.Query().Get("productid")

	var userId_ int
	var prodId_ int
	searchData := models.OrderSearchData{}
	var err error
	if timeStart == "" || timeEnd == "" {
		searchData.DateStart = nil
		searchData.DateEnd = nil
	} else {
		timeStart_, err := time.Parse("2006-01-02 15:04:05", timeStart)
		timeEnd_, err2 := time.Parse("2006-01-02 15:04:05", timeEnd)
		if err != nil || err2 != nil || !timeStart_.Before(timeEnd_) {
			http.Error(w, "date is wrong", http.StatusBadRequest)
			return
		}
		searchData.DateStart = &timeStart_
		searchData.DateEnd = &timeEnd_
	}

	if userId != "" {
		userId_, err = strconv.Atoi(userId)
		if err != nil {
			http.Error(w, "user id is wrong", http.StatusBadRequest)
			return
		}
		searchData.UserId = &userId_
	}

	if status != "" {
		if !validOrderStatus(status) {
			http.Error(w, "status is wrong", http.StatusBadRequest)
			return
		}
		searchData.Status = &status
	}

	if prodId != "" {
		prodId_, err = strconv.Atoi(prodId)
		if err != nil {
			http.Error(w, "product id is wrong", http.StatusBadRequest)
			return
		}
		searchData.ProdId = &prodId_
	}

	orders, err := h.ors.SearchOrders(searchData)
	if err != nil {
		WriteErrorResponse(w, err)
		return
	}
	writeJson(w, orders)
}

func (h *Handler) SetOrderStatus(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	req := models.OrderStatusRequest{}
	id, err := strconv.Atoi(vars["id"])
	if err != nil {
		http.Error(w, "bad request", http.StatusBadRequest)
		return
	}
	err = json.NewDecoder(r.Body).Decode(&req)
	if err != nil || !validOrderStatus(req.Status) {
		http.Error(w, "bad request", http.StatusBadRequest)
		return
	}

	err = h.ors.SetOrderStatus(id, req.Status)
	if err != nil {
		WriteErrorResponse(w, err)
		return
	}
	w.WriteHeader(http.StatusOK)
}

func (h *Handler) CancelOrder(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	orderId, err := strconv.Atoi(vars["id"])
	if err != nil {
		http.Error(w, "bad request", http.StatusBadRequest)
		return
	}

	sessionId, err := r.Cookie("sessionId")
	if err != nil {
		http.Error(w, "unauthorized", http.StatusUnauthorized)
		return
	}

	err = h.ors.CancelOrder(orderId, sessionId.Value)
	if err != nil {
		WriteErrorResponse(w, err)
		return
	}
	w.WriteHeader(http.StatusOK)
}

func (h *Handler) GetCurrentUserOrders(w http.ResponseWriter, r *http.Request) {
	sessionId, _ := r.Cookie("sessionId")

	orders, err := h.ors.GetCurrentUserOrders(sessionId.Value)
	if err != nil {
		WriteErrorResponse(w, err)
		return
	}
	writeJson(w, orders)
}

// coupons

func (h *Handler) GetAllCoupons(w http.ResponseWriter, r *http.Request) {
	coupons, err := h.cps.GetAllCoupons()
	if err != nil {
		WriteErrorResponse(w, err)
		return
	}
	writeJson(w, coupons)
}

func (h *Handler) CreateCoupon(w http.ResponseWriter, r *http.Request) {
	var coupon entities.Coupon
	err := json.NewDecoder(r.Body).Decode(&coupon)
	if err != nil {
		log.Errorf("CreateCoupon: unmarshal: %v", err)
		http.Error(w, "bad request", http.StatusBadRequest)
		return
	}

	newId, err := h.cps.CreateCoupon(models.Coupon_db{
		Code:     coupon.Code,
		Discount: coupon.Discount,
		Expires:  coupon.Expires,
		Active:   true,
	})
	if err != nil {
		WriteErrorResponse(w, err)
		return
	}
	w.Write([]byte(strconv.Itoa(newId)))
}

func (h *Handler) SetCouponActive(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	var req struct {
		Active bool `json:"active"`
	}
	id, err := strconv.Atoi(vars["id"])
	if err != nil {
		http.Error(w, "bad request", http.StatusBadRequest)
		return
	}
	err = json.NewDecoder(r.Body).Decode(&req)
	if err != nil {
		http.Error(w, "bad request", http.StatusBadRequest)
		return
	}

	err = h.cps.SetCouponActive(id, req.Active)
	if err != nil {
		WriteErrorResponse(w, err)
		return
	}
	w.WriteHeader(http.StatusOK)
}

// websocket

func (h *Handler) HandleWebsocket(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Errorf("HandleWebsocket: upgrade: %v", err)
		return
	}
	go ws.NewConn(conn).Serve(h.hub)
}

func (h *Handler) WsStats(w http.ResponseWriter, r *http.Request) {
	writeJson(w, map[string]int{
		"connections": h.hub.Count(),
	})
}

// middleware

func (h *Handler) AuthMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		sessionId, err := r.Cookie("sessionId")
		if err != nil {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}
		ok, e := h.us.CheckAuth(sessionId.Value)
		if !ok {
			if e != nil {
				http.Error(w, "server error", http.StatusInternalServerError)
			} else {
				http.Error(w, "unauthorized", http.StatusUnauthorized)
			}
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (h *Handler) ManagerAuthMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		sessionId, err := r.Cookie("sessionId")
		if err != nil {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}
		ok, err := h.us.CheckAccess(sessionId.Value)
		if !ok {
			if err != nil {
				log.Errorf("ManagerAuthMiddleware: %v", err)
				http.Error(w, "server error", http.StatusInternalServerError)
			} else {
				http.Error(w, "unauthorized", http.StatusUnauthorized)
			}
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (h *Handler) ErrorHandleMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if rec := recover(); rec != nil {
				log.Errorf("panic occured: %v \n stacktrace: %v", rec, string(debug.Stack()))
				http.Error(w, "something went wrong, contact with service administration", http.StatusBadGateway)
			}
		}()
		next.ServeHTTP(w, r)
	})
}

// cartSession reads the cart cookie, minting a fresh cart session (and
// setting the cookie) when the caller asks for one and none exists.
func (h *Handler) cartSession(w http.ResponseWriter, r *http.Request, create bool) (cartSessionId string, created bool, err error) {
	c, e := r.Cookie("cartSessionId")
	if e == nil {
		cartSessionId = c.Value
		return
	}
	if !errors.Is(e, http.ErrNoCookie) {
		log.Errorf("cartSession: cookie: %v", e)
		err = e
		return
	}
	created = true
	if !create {
		return
	}
	cartSessionId, err = h.cs.CreateCartSession()
	if err != nil {
		return
	}
	http.SetCookie(w, &http.Cookie{
		Name:    "cartSessionId",
		Value:   cartSessionId,
		Path:    "/",
		Expires: time.Now().Add(24 * time.Hour),
	})
	return
}

func (h *Handler) emptyCart() cart.Cart {
	return cart.New()
}

func validOrderStatus(status string) bool {
	switch status {
	case "created", "confirmed", "preparing", "out_for_delivery", "delivered", "cancelled":
		return true
	}
	return false
}

func writeJson(w http.ResponseWriter, v any) {
	writeJsonStatus(w, http.StatusOK, v)
}

// writeJsonStatus marshals before touching the response so a marshal
// failure can still become a clean 500.
func writeJsonStatus(w http.ResponseWriter, status int, v any) {
	jsonData, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		log.Errorf("writeJson: marshal: %v", err)
		http.Error(w, "server error", http.StatusInternalServerError)
		return
	}
	if status != http.StatusOK {
		w.WriteHeader(status)
	}
	w.Write(jsonData)
}

func WriteErrorResponse(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, models.ErrServerError):
		http.Error(w, err.Error(), http.StatusInternalServerError)
	case errors.Is(err, models.ErrUnautorized):
		http.Error(w, err.Error(), http.StatusUnauthorized)
	case errors.Is(err, models.ErrBadRequest):
		http.Error(w, err.Error(), http.StatusBadRequest)
	case errors.Is(err, models.ErrNotFoundError):
		http.Error(w, err.Error(), http.StatusNotFound)
	case errors.Is(err, models.ErrPaymentDeclined):
		http.Error(w, err.Error(), http.StatusPaymentRequired)
	case errors.Is(err, models.ErrNotAllowed):
		http.Error(w, err.Error(), http.StatusNotAcceptable)
	default:
		http.Error(w, "server error", http.StatusInternalServerError)
	}
}
