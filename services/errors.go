package services

import "errors"

var (
	// ErrInsufficientPoints: unlock attempted with a balance below the cost.
	ErrInsufficientPoints = errors.New("insufficient points")

	// ErrAlreadyUnlocked: unlock attempted on a reward the child already owns.
	ErrAlreadyUnlocked = errors.New("reward already unlocked")

	// ErrRewardNotUnlocked: equip or unequip attempted without an unlock.
	ErrRewardNotUnlocked = errors.New("reward not unlocked")

	// ErrInsufficientFunds: withdrawal or transfer exceeding the balance.
	ErrInsufficientFunds = errors.New("insufficient funds")
)
