package services

import (
	"time"

	"foodOrder/entities"
	"foodOrder/models"
	"foodOrder/repository"
)

type CouponService struct {
	cpr repository.CouponRepository
}

func NewCouponService(couponRepo repository.CouponRepository) CouponService {
	return CouponService{
		cpr: couponRepo,
	}
}

// ValidateCoupon resolves a code to its coupon if it exists, is active and
// has not expired. Checkout calls this again so a coupon deactivated after
// being applied never discounts the final order.
func (cps *CouponService) ValidateCoupon(code string) (coupon models.Coupon_db, err error) {
	if code == "" {
		err = models.ErrBadRequest
		return
	}
	coupon, ex, e := cps.cpr.GetCouponByCode(code)
	if e != nil {
		err = e
		return
	}
	if !ex {
		log.Error("ValidateCoupon: coupon does not exist")
		err = models.ErrNotFoundError
		return
	}
	if !coupon.Active {
		log.Error("ValidateCoupon: coupon is not active")
		err = models.ErrNotAllowed
		return
	}
	if coupon.Expires.Before(time.Now()) {
		log.Error("ValidateCoupon: coupon has expired")
		err = models.ErrNotAllowed
		return
	}
	return
}

func (cps *CouponService) GetAllCoupons() (coupons []entities.Coupon, err error) {
	coupons, err = cps.cpr.GetAllCoupons()
	return
}

func (cps *CouponService) CreateCoupon(coupon models.Coupon_db) (newCouponId int, err error) {
	if coupon.Expires.IsZero() || coupon.Expires.Before(time.Now()) {
		log.Error("CreateCoupon: expiration must be in the future")
		err = models.ErrNotAllowed
		return
	}
	newCouponId, err = cps.cpr.CreateCoupon(coupon)
	return
}

func (cps *CouponService) SetCouponActive(couponId int, active bool) (err error) {
	err = cps.cpr.SetCouponActive(couponId, active)
	return
}
