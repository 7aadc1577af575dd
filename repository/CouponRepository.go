package repository

import (
	"database/sql"
	"errors"
	"strings"

	"foodOrder/entities"
	"foodOrder/models"
)

type CouponRepository interface {
	GetCouponByCode(code string) (coupon models.Coupon_db, exists bool, err error)
	GetAllCoupons() (coupons []entities.Coupon, err error)
	CreateCoupon(coupon models.Coupon_db) (newCouponId int, err error)
	SetCouponActive(couponId int, active bool) (err error)
}

type CouponRepo struct {
	db *sql.DB
}

func NewCouponRepository(conn *sql.DB) (CouponRepository, error) {
	if conn == nil {
		return nil, errors.New("conn must be non-nil")
	}
	err := conn.Ping()
	if err != nil {
		return nil, err
	}
	return &CouponRepo{
		db: conn,
	}, nil
}

func (c *CouponRepo) GetCouponByCode(code string) (coupon models.Coupon_db, exists bool, err error) {
	row := c.db.QueryRow("SELECT Id, Code, Discount, Expires, Active FROM Coupons WHERE Code = $1", strings.ToUpper(code))
	err = row.Scan(&coupon.Id, &coupon.Code, &coupon.Discount, &coupon.Expires, &coupon.Active)
	if err != nil {
		if err == sql.ErrNoRows {
			err = nil
			return
		}
		log.Errorf("GetCouponByCode: %v", err)
		err = models.ErrServerError
		return
	}
	exists = true
	return
}

func (c *CouponRepo) GetAllCoupons() (coupons []entities.Coupon, err error) {
	rows, e := c.db.Query("SELECT Id, Code, Discount, Expires, Active FROM Coupons ORDER BY Id")
	if e != nil {
		log.Errorf("GetAllCoupons[1]: %v", e)
		err = models.ErrServerError
		return
	}
	defer rows.Close()
	for rows.Next() {
		coupon := entities.Coupon{}
		err = rows.Scan(&coupon.Id, &coupon.Code, &coupon.Discount, &coupon.Expires, &coupon.Active)
		if err != nil {
			log.Errorf("GetAllCoupons[2]: %v", err)
			err = models.ErrServerError
			return
		}
		coupons = append(coupons, coupon)
	}
	if e := rows.Err(); e != nil {
		log.Errorf("GetAllCoupons[3]: %v", e)
		err = models.ErrServerError
	}
	return
}

func (c *CouponRepo) CreateCoupon(coupon models.Coupon_db) (newCouponId int, err error) {
	if coupon.Code == "" || coupon.Discount <= 0 {
		log.Error("CreateCoupon: code and positive discount are required")
		err = models.ErrNotAllowed
		return
	}
	code := strings.ToUpper(coupon.Code)

	var ex string
	e := c.db.QueryRow("SELECT Code FROM Coupons WHERE Code=$1", code).Scan(&ex)
	if e == nil {
		log.Error("CreateCoupon: coupon code is not unique")
		err = models.ErrNotAllowed
		return
	}
	if e != sql.ErrNoRows {
		log.Errorf("CreateCoupon[1]: %v", e)
		err = models.ErrServerError
		return
	}

	err = c.db.QueryRow("INSERT INTO Coupons (Code, Discount, Expires, Active) VALUES ($1, $2, $3, $4) RETURNING Id",
		code, coupon.Discount, coupon.Expires, coupon.Active).Scan(&newCouponId)
	if err != nil {
		log.Errorf("CreateCoupon[2]: %v", err)
		err = models.ErrServerError
	}
	return
}

func (c *CouponRepo) SetCouponActive(couponId int, active bool) (err error) {
	res, e := c.db.Exec("UPDATE Coupons SET Active=$1 WHERE Id=$2", active, couponId)
	if e != nil {
		log.Errorf("SetCouponActive: %v", e)
		err = models.ErrServerError
		return
	}
	n, _ := res.RowsAffected()
	if n == 0 {
		err = models.ErrNotFoundError
	}
	return
}
